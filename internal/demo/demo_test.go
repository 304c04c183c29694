package demo

import (
	"context"
	"testing"

	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/render/memory"
	"github.com/hupe1980/vizsync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Live(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	f, err := vizsync.Open(ctx, vizsync.WithBackend(b))
	require.NoError(t, err)
	defer f.Close()

	ticks := 0
	frames, err := Run(ctx, f, Scene{Steps: 6, Rings: 4, Segments: 8, Seed: 1}, func(context.Context, int) error {
		ticks++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, frames)
	assert.Equal(t, 6, ticks)
	assert.Equal(t, 6, b.Frames())
	assert.Len(t, b.Names(), 5)

	solid, ok := b.Object(schema.TableName(schema.Mesh, 0))
	require.True(t, ok)
	assert.IsType(t, &render.LineSet{}, solid.Geometry, "wireframe stays after the toggle")
	assert.NotNil(t, solid.Geometry.(*render.LineSet).Colors)

	snap, err := f.Record(ctx, schema.Mesh, 1)
	require.NoError(t, err)
	assert.Equal(t, "olive", snap.Text(schema.Color))
	assert.False(t, snap.Bool(schema.Wireframe))
}

func TestRun_Record(t *testing.T) {
	ctx := context.Background()
	f, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord))
	require.NoError(t, err)
	defer f.Close()

	frames, err := Run(ctx, f, Scene{Steps: 3, Rings: 3, Segments: 4, Seed: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Equal(t, uint64(3), f.Frames())
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f, err := vizsync.Open(ctx)
	require.NoError(t, err)
	defer f.Close()

	frames, err := Run(ctx, f, Scene{Steps: 10, Rings: 3, Segments: 4}, func(_ context.Context, step int) error {
		if step == 1 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, frames)
}
