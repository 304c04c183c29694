package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/render/memory"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/memstore"
	"github.com/hupe1980/vizsync/store/sqlite"
	"github.com/hupe1980/vizsync/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scene drives f through a small deforming scene and returns the final
// mesh positions.
func scene(t *testing.T, f *vizsync.Factory, steps int) [][]float64 {
	t.Helper()
	ctx := context.Background()
	rng := testutil.NewRNG(7)
	positions, cells := testutil.Grid(4, 4)

	mesh, err := f.AddMesh(ctx, vizsync.Params{
		"positions":    positions,
		"cells":        cells,
		"scalar_field": testutil.Column(positions, 1),
		"at":           0,
		"colormap":     "viridis",
	})
	require.NoError(t, err)
	_, err = f.AddPoints(ctx, vizsync.Params{"positions": positions, "at": 1, "color": "red"})
	require.NoError(t, err)
	_, err = f.AddMarkers(ctx, vizsync.Params{"normal_to": mesh, "indices": []int{5, 6}})
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))

	moved := positions
	for step := range steps {
		moved = rng.Jitter(positions, 0.1)
		require.NoError(t, f.UpdateMesh(ctx, mesh, vizsync.Params{"positions": moved}))
		if step == 1 {
			require.NoError(t, f.UpdateMesh(ctx, mesh, vizsync.Params{
				"scalar_field": testutil.Column(positions, 0),
				"colormap":     "plasma",
			}))
		}
		require.NoError(t, f.Render(ctx))
	}
	return moved
}

func TestPlay_MatchesLive(t *testing.T) {
	ctx := context.Background()

	live := memory.New()
	lf, err := vizsync.Open(ctx, vizsync.WithBackend(live))
	require.NoError(t, err)
	scene(t, lf, 4)

	st := memstore.New()
	rf, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord), vizsync.WithStore(st))
	require.NoError(t, err)
	moved := scene(t, rf, 4)
	require.NoError(t, rf.Close())

	played := memory.New()
	p := New(st, played, func(o *Options) { o.FPS = -1 })
	stats, err := p.Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Frames)
	assert.Equal(t, 5, played.Frames())
	assert.Positive(t, p.Seq())

	assert.Equal(t, live.Names(), played.Names())
	for _, name := range live.Names() {
		want, _ := live.Object(name)
		got, ok := played.Object(name)
		require.True(t, ok, name)
		assert.Equal(t, want.At, got.At, name)
		assert.Equal(t, want.Geometry, got.Geometry, name)
		assert.Equal(t, *want.Material, *got.Material, name)
	}

	obj, _ := played.Object(schema.TableName(schema.Mesh, 0))
	mesh := obj.Geometry.(*render.TriangleMesh)
	assert.InDelta(t, moved[5][0], mesh.Vertices[5].X, 1e-6)

	require.NoError(t, lf.Close())
}

func TestPlay_MaxFrames(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	f, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord), vizsync.WithStore(st))
	require.NoError(t, err)
	scene(t, f, 6)

	b := memory.New()
	stats, err := New(st, b, func(o *Options) {
		o.FPS = -1
		o.MaxFrames = 3
	}).Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Frames)
	assert.Equal(t, 3, b.Frames())
}

func TestPlay_Paced(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	f, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord), vizsync.WithStore(st))
	require.NoError(t, err)
	scene(t, f, 3)

	start := time.Now()
	stats, err := New(st, memory.New(), func(o *Options) { o.FPS = 50 }).Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Frames)
	// burst of one, then 20ms per frame
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPlay_Canceled(t *testing.T) {
	st := memstore.New()
	f, err := vizsync.Open(context.Background(), vizsync.WithMode(vizsync.ModeRecord), vizsync.WithStore(st))
	require.NoError(t, err)
	scene(t, f, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(st, memory.New()).Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFollow_NoPath(t *testing.T) {
	_, err := New(memstore.New(), memory.New(), func(o *Options) { o.Follow = true }).Play(context.Background())
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFollow_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scene.db")

	f, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord), vizsync.WithRecording(path))
	require.NoError(t, err)
	positions, cells := testutil.Grid(3, 3)
	id, err := f.AddMesh(ctx, vizsync.Params{"positions": positions, "cells": cells})
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))

	st, err := sqlite.New(path)
	require.NoError(t, err)
	defer st.Close()

	type result struct {
		stats Stats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := New(st, memory.New(), func(o *Options) {
			o.FPS = -1
			o.Follow = true
			o.MaxFrames = 3
			o.IdleTimeout = 5 * time.Second
		}).Play(ctx)
		done <- result{stats, err}
	}()

	time.Sleep(100 * time.Millisecond)
	for range 2 {
		require.NoError(t, f.UpdateMesh(ctx, id, vizsync.Params{"opacity": 0.5}))
		require.NoError(t, f.Render(ctx))
	}
	require.NoError(t, f.Close())

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, 3, r.stats.Frames)
	case <-time.After(10 * time.Second):
		t.Fatal("follow did not pick up new frames")
	}
}

var _ store.Store = (*sqlite.Store)(nil)

func TestPlay_RecordingWithoutRejectedObjects(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	f, err := vizsync.Open(ctx, vizsync.WithMode(vizsync.ModeRecord), vizsync.WithStore(st))
	require.NoError(t, err)

	_, err = f.AddPoints(ctx, vizsync.Params{
		"positions":    [][]float64{{0, 0, 0}, {1, 0, 0}},
		"scalar_field": []float64{0, 1, 2},
	})
	require.ErrorIs(t, err, vizsync.ErrScalarCount)

	id, err := f.AddPoints(ctx, vizsync.Params{
		"positions":    [][]float64{{0, 0, 0}, {1, 0, 0}},
		"scalar_field": []float64{0, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	require.ErrorIs(t, f.UpdatePoints(ctx, id, vizsync.Params{"positions": [][]float64{{0, 0, 0}}}), vizsync.ErrScalarCount)
	require.NoError(t, f.Render(ctx))
	require.NoError(t, f.Close())

	played := memory.New()
	stats, err := New(st, played, func(o *Options) { o.FPS = -1 }).Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Frames)

	obj, ok := played.Object(schema.TableName(schema.Points, 0))
	require.True(t, ok)
	pc := obj.Geometry.(*render.PointCloud)
	assert.Len(t, pc.Points, 2)
	assert.Len(t, pc.Colors, 2)
}
