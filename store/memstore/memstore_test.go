package memstore

import (
	"context"
	"testing"

	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s := New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateTable(ctx, "Points_0", []store.Field{{Name: "positions", Kind: store.KindArray}}))
	require.NoError(t, s.Close())

	_, err := s.Append(ctx, "Points_0", store.Row{})
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, s.MarkFrame(ctx), store.ErrClosed)

	for _, err := range s.Entries(ctx, 0) {
		assert.ErrorIs(t, err, store.ErrClosed)
	}
}

func TestTables(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateTable(ctx, "Visual", nil))
	require.NoError(t, s.CreateTable(ctx, "Mesh_0", nil))
	assert.Equal(t, []string{"Visual", "Mesh_0"}, s.Tables())
}
