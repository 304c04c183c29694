// Package storetest provides a conformance suite for store.Store
// implementations.
package storetest

import (
	"context"
	"testing"

	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

var (
	styleFields = []store.Field{
		{Name: "at", Kind: store.KindInteger, Default: 0},
		{Name: "colormap", Kind: store.KindText, Default: "jet"},
	}
	meshFields = []store.Field{
		{Name: "positions", Kind: store.KindArray},
		{Name: "cells", Kind: store.KindArray},
		{Name: "wireframe", Kind: store.KindBoolean, Default: false},
		{Name: "opacity", Kind: store.KindFloat, Default: 1.0},
		{Name: "color", Kind: store.KindText, Default: "gold"},
		{Name: "scalar_field", Kind: store.KindArray},
		{Name: "visual_fk", Kind: store.KindRelation, Ref: "Visual"},
	}
)

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("AppendAndLatest", func(t *testing.T) { testAppendAndLatest(t, newStore(t)) })
	t.Run("UpdateLatestMerges", func(t *testing.T) { testUpdateLatest(t, newStore(t)) })
	t.Run("Relations", func(t *testing.T) { testRelations(t, newStore(t)) })
	t.Run("Errors", func(t *testing.T) { testErrors(t, newStore(t)) })
	t.Run("JournalOrder", func(t *testing.T) { testJournal(t, newStore(t)) })
}

func testAppendAndLatest(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, "Mesh_0", meshFields))

	pos := vector.MustNormalize([][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, true)
	cells := vector.MustNormalize([][]int{{0, 1, 2}}, false)

	id, err := s.Append(ctx, "Mesh_0", store.Row{"positions": pos, "cells": cells, "opacity": 0.5})
	require.NoError(t, err)
	assert.Equal(t, store.RowID(1), id)

	latestID, row, err := s.Latest(ctx, "Mesh_0")
	require.NoError(t, err)
	assert.Equal(t, id, latestID)
	assert.True(t, pos.Equal(row["positions"].(vector.Array)))
	assert.True(t, cells.Equal(row["cells"].(vector.Array)))
	assert.Equal(t, 0.5, row["opacity"])
	assert.Equal(t, false, row["wireframe"])
	assert.Equal(t, "gold", row["color"])
	_, hasScalars := row["scalar_field"]
	assert.False(t, hasScalars)
}

func testUpdateLatest(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, "Mesh_0", meshFields))

	pos := vector.MustNormalize([]float64{1, 2, 3}, true)
	_, err := s.Append(ctx, "Mesh_0", store.Row{"positions": pos, "color": "red"})
	require.NoError(t, err)

	pos2 := vector.MustNormalize([]float64{4, 5, 6}, true)
	require.NoError(t, s.UpdateLatest(ctx, "Mesh_0", store.Row{"positions": pos2}))
	require.NoError(t, s.UpdateLatest(ctx, "Mesh_0", store.Row{"scalar_field": vector.Array{}}))

	id, row, err := s.Latest(ctx, "Mesh_0")
	require.NoError(t, err)
	assert.Equal(t, store.RowID(1), id)
	assert.True(t, pos2.Equal(row["positions"].(vector.Array)))
	assert.Equal(t, "red", row["color"])

	sf, ok := row["scalar_field"]
	require.True(t, ok, "explicit empty value must be stored")
	assert.True(t, sf.(vector.Array).IsEmpty())
}

func testRelations(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, "Visual", styleFields))
	require.NoError(t, s.CreateTable(ctx, "Mesh_0", meshFields))

	styleID, err := s.Append(ctx, "Visual", store.Row{"at": 2, "colormap": "viridis"})
	require.NoError(t, err)

	_, err = s.Append(ctx, "Mesh_0", store.Row{
		"positions": vector.MustNormalize([]float64{0, 0, 0}, true),
		"visual_fk": styleID,
	})
	require.NoError(t, err)

	_, row, err := s.Latest(ctx, "Mesh_0")
	require.NoError(t, err)
	assert.Equal(t, styleID, row["visual_fk"])

	style, err := s.Get(ctx, "Visual", styleID)
	require.NoError(t, err)
	assert.Equal(t, 2, style["at"])
	assert.Equal(t, "viridis", style["colormap"])
}

func testErrors(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Append(ctx, "Mesh_9", store.Row{})
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	require.NoError(t, s.CreateTable(ctx, "Mesh_0", meshFields))
	assert.ErrorIs(t, s.CreateTable(ctx, "Mesh_0", meshFields), store.ErrTableExists)

	assert.ErrorIs(t, s.UpdateLatest(ctx, "Mesh_0", store.Row{"color": "red"}), store.ErrNoRows)

	_, _, err = s.Latest(ctx, "Mesh_0")
	assert.ErrorIs(t, err, store.ErrNoRows)

	_, err = s.Append(ctx, "Mesh_0", store.Row{"alpha": 1.0})
	assert.ErrorIs(t, err, store.ErrUnknownField)

	_, err = s.Get(ctx, "Mesh_0", 42)
	assert.ErrorIs(t, err, store.ErrRowNotFound)
}

func testJournal(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, "Mesh_0", meshFields))
	_, err := s.Append(ctx, "Mesh_0", store.Row{"positions": vector.MustNormalize([]float64{0, 0, 0}, true)})
	require.NoError(t, err)
	require.NoError(t, s.MarkFrame(ctx))
	require.NoError(t, s.UpdateLatest(ctx, "Mesh_0", store.Row{"opacity": 0.25}))
	require.NoError(t, s.MarkFrame(ctx))

	var (
		ops  []store.Op
		seqs []uint64
	)
	for e, err := range s.Entries(ctx, 0) {
		require.NoError(t, err)
		ops = append(ops, e.Op)
		seqs = append(seqs, e.Seq)
		switch e.Op {
		case store.OpCreateTable:
			assert.Equal(t, "Mesh_0", e.Table)
			assert.Len(t, e.Fields, len(meshFields))
		case store.OpUpdate:
			assert.Equal(t, store.Row{"opacity": 0.25}, e.Row)
		}
	}
	assert.Equal(t, []store.Op{store.OpCreateTable, store.OpAppend, store.OpFrame, store.OpUpdate, store.OpFrame}, ops)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}

	var tail []store.Op
	for e, err := range s.Entries(ctx, seqs[2]) {
		require.NoError(t, err)
		tail = append(tail, e.Op)
	}
	assert.Equal(t, []store.Op{store.OpUpdate, store.OpFrame}, tail)
}
