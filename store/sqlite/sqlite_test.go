package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/vizsync/codec"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/storetest"
	"github.com/hupe1980/vizsync/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, optFns ...func(o *Options)) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "rec.db"), optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestConformance_Zstd(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t, func(o *Options) {
			o.Compression = codec.CompressionZSTD
			o.Codec = codec.JSON{}
		})
	})
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rec.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateTable(ctx, "Points_0", []store.Field{
		{Name: "positions", Kind: store.KindArray},
		{Name: "point_size", Kind: store.KindFloat, Default: 5.0},
	}))
	_, err = s.Append(ctx, "Points_0", store.Row{"positions": vector.MustNormalize([]float64{1, 2, 3}, true)})
	require.NoError(t, err)
	require.NoError(t, s.MarkFrame(ctx))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	_, row, err := s.Latest(ctx, "Points_0")
	require.NoError(t, err)
	assert.Equal(t, 5.0, row["point_size"])

	var ops []store.Op
	for e, err := range s.Entries(ctx, 0) {
		require.NoError(t, err)
		ops = append(ops, e.Op)
		if e.Op == store.OpCreateTable {
			f, ok := store.Lookup(e.Fields, "point_size")
			require.True(t, ok)
			assert.Equal(t, 5.0, f.Default)
		}
	}
	assert.Equal(t, []store.Op{store.OpCreateTable, store.OpAppend, store.OpFrame}, ops)
}

func TestEntries_Batches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for range entriesBatch + 10 {
		require.NoError(t, s.MarkFrame(ctx))
	}

	n := 0
	var last uint64
	for e, err := range s.Entries(ctx, 0) {
		require.NoError(t, err)
		assert.Greater(t, e.Seq, last)
		last = e.Seq
		n++
	}
	assert.Equal(t, entriesBatch+10, n)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, "Visual", []store.Field{{Name: "at", Kind: store.KindInteger, Default: 0}}))
	_, err := s.Append(ctx, "Visual", store.Row{"at": 3})
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, s.Snapshot(ctx, dst))

	c, err := New(dst)
	require.NoError(t, err)
	defer c.Close()

	row, err := c.Get(ctx, "Visual", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, row["at"])
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.MarkFrame(ctx), store.ErrClosed)
	_, err := s.Append(ctx, "Visual", store.Row{})
	assert.ErrorIs(t, err, store.ErrClosed)
}
