package vizsync

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/render/memory"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/memstore"
	"github.com/hupe1980/vizsync/store/sqlite"
	"github.com/hupe1980/vizsync/testutil"
	"github.com/hupe1980/vizsync/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLive(t *testing.T, optFns ...Option) (*Factory, *memory.Backend) {
	t.Helper()
	b := memory.New()
	f, err := Open(context.Background(), append([]Option{WithBackend(b)}, optFns...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, b
}

func meshParams() Params {
	positions, cells := testutil.Grid(3, 3)
	return Params{"positions": positions, "cells": cells}
}

func TestOpen_Options(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, WithStore(memstore.New()), WithRecording(filepath.Join(t.TempDir(), "x.db")))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Open(ctx, WithUpload(blobstore.NewMemoryStore(), "x.db"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	f, err := Open(ctx, WithMode(ModeRecord), WithLogger(nil), WithMetricsCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, ModeRecord, f.Mode())
	assert.Nil(t, f.Backend())
	require.NoError(t, f.Close())
}

func TestAdd_IDsPerKind(t *testing.T) {
	ctx := context.Background()
	f, _ := openLive(t)

	for want := range 3 {
		id, err := f.AddMesh(ctx, meshParams())
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	id, err := f.AddPoints(ctx, Params{"positions": [][]float64{{0, 0, 0}}})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestAdd_ReadBack(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		kind   Kind
		params Params
		arrays []string
	}{
		{"mesh", Mesh, meshParams(), []string{schema.Positions, schema.Cells}},
		{"points", Points, Params{"positions": [][]float64{{0, 0}, {1, 1}}}, []string{schema.Positions}},
		{"arrows", Arrows, Params{"positions": []float64{0, 0, 0}, "vectors": []float64{0, 0, 1}}, []string{schema.Positions, schema.Vectors}},
		{"symbols", Symbols, Params{"positions": [][]float64{{0, 0, 0}}, "orientations": [][]float64{{1, 0, 0}}}, []string{schema.Positions, schema.Orientations}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := openLive(t)
			id, err := f.Add(ctx, tt.kind, tt.params)
			require.NoError(t, err)

			snap, err := f.Record(ctx, tt.kind, id)
			require.NoError(t, err)

			want, err := schema.FormatCreate(tt.kind, tt.params)
			require.NoError(t, err)
			for _, name := range tt.arrays {
				assert.True(t, want.Fields[name].(vector.Array).Equal(snap.Array(name)), name)
			}
			_, related := snap.StyleRef()
			assert.False(t, related)
		})
	}
}

func TestAdd_Errors(t *testing.T) {
	ctx := context.Background()
	f, _ := openLive(t)

	_, err := f.AddMesh(ctx, Params{"positions": [][]float64{{0, 0, 0}}})
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = f.AddPoints(ctx, Params{"positions": [][]float64{{0, 0, 0}}, "bogus": 1})
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = f.AddPoints(ctx, Params{"positions": [][]float64{{1, 2, 3, 4}}})
	assert.ErrorIs(t, err, ErrShape)

	_, err = f.AddPoints(ctx, Params{"positions": [][]float64{{0, 0, 0}}, "colormap": "nope"})
	var ce *ColormapError
	assert.ErrorAs(t, err, &ce)

	_, err = f.Add(ctx, Kind(0), Params{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = f.AddMarkers(ctx, Params{"normal_to": 7, "indices": []int{0}})
	var uoe *UnknownObjectError
	require.ErrorAs(t, err, &uoe)
	assert.Equal(t, Mesh, uoe.Kind)
	assert.Equal(t, 7, uoe.ID)
}

func TestUpdate_OmissionAndOverwrite(t *testing.T) {
	ctx := context.Background()
	f, b := openLive(t)

	params := meshParams()
	params["color"] = "red"
	params["opacity"] = 0.5
	id, err := f.AddMesh(ctx, params)
	require.NoError(t, err)

	moved := testutil.NewRNG(1).Jitter(params["positions"].([][]float64), 0.1)
	require.NoError(t, f.UpdateMesh(ctx, id, Params{"positions": moved, "opacity": nil}))

	snap, err := f.Record(ctx, Mesh, id)
	require.NoError(t, err)
	assert.Equal(t, "red", snap.Text(schema.Color))
	assert.InDelta(t, 0.5, snap.Float(schema.Opacity), 1e-9)
	assert.True(t, vector.MustNormalize(moved, true).Equal(snap.Array(schema.Positions)))

	// topology is fixed after creation
	require.NoError(t, f.UpdateMesh(ctx, id, Params{"cells": [][]int{{0, 1, 2}}}))
	snap, err = f.Record(ctx, Mesh, id)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Array(schema.Cells).Len())

	require.NoError(t, f.Render(ctx))
	obj, ok := b.Object(schema.TableName(Mesh, id))
	require.True(t, ok)
	mesh := obj.Geometry.(*render.TriangleMesh)
	assert.Len(t, mesh.Triangles, 8)
	assert.InDelta(t, moved[4][0], mesh.Vertices[4].X, 1e-6)
}

func TestUpdate_Unknown(t *testing.T) {
	ctx := context.Background()
	f, _ := openLive(t)

	err := f.UpdateMesh(ctx, 3, Params{"opacity": 0.1})
	var uoe *UnknownObjectError
	require.ErrorAs(t, err, &uoe)
	assert.ErrorIs(t, err, ErrUnknownObject)

	_, err = f.Record(ctx, Mesh, 3)
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestStyleReuse(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	f, _ := openLive(t, WithStore(st))

	a, err := f.AddMesh(ctx, mergeParams(meshParams(), Params{"at": 1, "colormap": "viridis"}))
	require.NoError(t, err)
	b, err := f.AddMesh(ctx, mergeParams(meshParams(), Params{"at": 1, "colormap": "viridis"}))
	require.NoError(t, err)
	c, err := f.AddMesh(ctx, mergeParams(meshParams(), Params{"at": 1, "colormap": "plasma"}))
	require.NoError(t, err)
	d, err := f.AddMesh(ctx, meshParams())
	require.NoError(t, err)

	refOf := func(id int) int64 {
		snap, err := f.Record(ctx, Mesh, id)
		require.NoError(t, err)
		ref, ok := snap.StyleRef()
		if !ok {
			return 0
		}
		return int64(ref)
	}
	assert.Equal(t, refOf(a), refOf(b), "equal style reuses the window row")
	assert.NotEqual(t, refOf(a), refOf(c))
	assert.Zero(t, refOf(d), "no style supplied, no relation")

	s, related, err := f.Style(ctx, Mesh, c)
	require.NoError(t, err)
	assert.True(t, related)
	assert.Equal(t, schema.Style{At: 1, Colormap: "plasma"}, s)

	s, related, err = f.Style(ctx, Mesh, d)
	require.NoError(t, err)
	assert.False(t, related)
	assert.Equal(t, schema.DefaultStyle(), s)

	assert.Contains(t, st.Tables(), schema.StyleTable)
}

func TestColormapOnUpdate(t *testing.T) {
	ctx := context.Background()
	f, b := openLive(t)

	positions := [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	id, err := f.AddPoints(ctx, Params{"positions": positions, "color": "red"})
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))

	obj, _ := b.Object(schema.TableName(Points, id))
	assert.Nil(t, obj.Geometry.(*render.PointCloud).Colors)

	require.NoError(t, f.UpdatePoints(ctx, id, Params{"scalar_field": []float64{0, 1, 2}, "colormap": "viridis"}))
	require.NoError(t, f.Render(ctx))

	obj, _ = b.Object(schema.TableName(Points, id))
	assert.Len(t, obj.Geometry.(*render.PointCloud).Colors, 3)
	assert.True(t, obj.Flags == 0, "flags are cleared by the rendered frame")
	assert.Equal(t, float32(1), obj.Material.BaseColor.X)

	err = f.UpdatePoints(ctx, id, Params{"scalar_field": []float64{0, 1}})
	assert.Error(t, err)
}

func TestMarkersFollowMesh(t *testing.T) {
	ctx := context.Background()
	f, b := openLive(t)

	params := meshParams()
	mesh, err := f.AddMesh(ctx, params)
	require.NoError(t, err)
	markers, err := f.AddMarkers(ctx, Params{"normal_to": mesh, "indices": []int{4}})
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))

	moved := testutil.NewRNG(3).Jitter(params["positions"].([][]float64), 0.5)
	require.NoError(t, f.UpdateMesh(ctx, mesh, Params{"positions": moved}))
	require.NoError(t, f.Render(ctx))

	obj, ok := b.Object(schema.TableName(Markers, markers))
	require.True(t, ok)
	cloud := obj.Geometry.(*render.PointCloud)
	require.Len(t, cloud.Points, 1)
	assert.InDelta(t, moved[4][0], cloud.Points[0].X, 1e-6)
	assert.InDelta(t, moved[4][1], cloud.Points[0].Y, 1e-6)
}

func TestRender_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	f, b := openLive(t, WithMetricsCollector(metrics))

	id, err := f.AddMesh(ctx, meshParams())
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))
	require.NoError(t, f.Render(ctx))
	require.NoError(t, f.UpdateMesh(ctx, id, Params{"opacity": 0.3}))
	require.NoError(t, f.Render(ctx))
	_ = f.UpdateMesh(ctx, 9, Params{"opacity": 0.3})

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.AddCount)
	assert.Equal(t, int64(2), stats.UpdateCount)
	assert.Equal(t, int64(1), stats.UpdateErrors)
	assert.Equal(t, int64(3), stats.RenderCount)
	assert.Equal(t, int64(2), stats.FlushedActors)
	assert.Equal(t, 3, b.Frames())
	assert.Equal(t, uint64(3), f.Frames())
}

func TestRecordMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scene.db")
	bs := blobstore.NewMemoryStore()

	f, err := Open(ctx, WithMode(ModeRecord), WithRecording(path), WithUpload(bs, "runs/scene.db"))
	require.NoError(t, err)

	id, err := f.AddMesh(ctx, meshParams())
	require.NoError(t, err)
	require.NoError(t, f.Render(ctx))
	require.NoError(t, f.UpdateMesh(ctx, id, Params{"wireframe": true}))
	require.NoError(t, f.Render(ctx))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	assert.ErrorIs(t, f.Render(ctx), ErrClosed)
	_, err = f.AddMesh(ctx, meshParams())
	assert.ErrorIs(t, err, ErrClosed)

	names, err := bs.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/scene.db"}, names)

	st, err := sqlite.New(path)
	require.NoError(t, err)
	defer st.Close()

	snap, err := schema.Load(ctx, st, Mesh, id)
	require.NoError(t, err)
	assert.True(t, snap.Bool(schema.Wireframe))

	frames := 0
	for e, err := range st.Entries(ctx, 0) {
		require.NoError(t, err)
		if e.Op == store.OpFrame {
			frames++
		}
	}
	assert.Equal(t, 2, frames)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func mergeParams(a, b Params) Params {
	out := Params{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// modeFixture is a factory with the store it writes to. b is nil in
// record mode.
type modeFixture struct {
	f  *Factory
	st *memstore.Store
	b  *memory.Backend
}

// openModes returns a live and a record factory, each on its own memstore.
func openModes(t *testing.T) map[string]modeFixture {
	t.Helper()

	st := memstore.New()
	f, b := openLive(t, WithStore(st))
	live := modeFixture{f: f, st: st, b: b}

	st = memstore.New()
	rf, err := Open(context.Background(), WithMode(ModeRecord), WithStore(st))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rf.Close() })

	return map[string]modeFixture{
		"live":   live,
		"record": {f: rf, st: st},
	}
}

func TestAdd_RejectedInBothModes(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		params Params
		want   error
	}{
		{"scalar count", Points, Params{
			"positions":    [][]float64{{0, 0, 0}, {1, 0, 0}},
			"scalar_field": []float64{0, 1, 2},
		}, ErrScalarCount},
		{"vectors count", Arrows, Params{
			"positions": [][]float64{{0, 0, 0}, {1, 0, 0}},
			"vectors":   [][]float64{{0, 0, 1}},
		}, ErrGeometry},
		{"orientations count", Symbols, Params{
			"positions":    [][]float64{{0, 0, 0}},
			"orientations": [][]float64{{0, 0, 1}, {0, 1, 0}},
		}, ErrGeometry},
		{"cell out of range", Mesh, Params{
			"positions": [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			"cells":     [][]int{{0, 1, 5}},
		}, ErrGeometry},
		{"marker out of range", Markers, Params{"normal_to": 0, "indices": []int{42}}, ErrGeometry},
		{"marker scalars", Markers, Params{
			"normal_to":    0,
			"indices":      []int{1, 2},
			"scalar_field": []float64{1},
		}, ErrScalarCount},
		{"invalid color", Points, Params{
			"positions": [][]float64{{0, 0, 0}},
			"color":     "no-such-color",
		}, ErrInvalidColor},
	}

	valid := map[Kind]Params{
		Mesh:    meshParams(),
		Points:  {"positions": [][]float64{{0, 0, 0}}},
		Arrows:  {"positions": [][]float64{{0, 0, 0}}, "vectors": [][]float64{{0, 0, 1}}},
		Symbols: {"positions": [][]float64{{0, 0, 0}}, "orientations": [][]float64{{0, 0, 1}}},
		Markers: {"normal_to": 0, "indices": []int{1}},
	}

	for mode, m := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			ctx := context.Background()
			f, st := m.f, m.st

			// Mesh_0 is the marker target.
			_, err := f.AddMesh(ctx, meshParams())
			require.NoError(t, err)
			nextID := map[Kind]int{Mesh: 1}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					next := nextID[tt.kind]
					name := schema.TableName(tt.kind, next)

					var err error
					require.NotPanics(t, func() {
						_, err = f.Add(ctx, tt.kind, mergeParams(tt.params, Params{"at": 3, "colormap": "plasma"}))
					})
					require.ErrorIs(t, err, tt.want)

					assert.NotContains(t, st.Tables(), name)
					assert.NotContains(t, st.Tables(), schema.StyleTable, "no style row for a rejected object")
					_, err = f.Record(ctx, tt.kind, next)
					assert.ErrorIs(t, err, ErrUnknownObject)
					if m.b != nil {
						_, ok := m.b.Object(name)
						assert.False(t, ok)
					}

					id, err := f.Add(ctx, tt.kind, valid[tt.kind])
					require.NoError(t, err)
					assert.Equal(t, next, id, "rejected add does not use up an id")
					nextID[tt.kind]++
				})
			}
		})
	}
}

func TestUpdate_RejectedInBothModes(t *testing.T) {
	quad := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}

	for mode, m := range openModes(t) {
		t.Run(mode, func(t *testing.T) {
			ctx := context.Background()
			f, st := m.f, m.st

			wire, err := f.AddMesh(ctx, Params{
				"positions": quad,
				"cells":     [][]int{{0, 1, 2}, {1, 2, 3}},
				"wireframe": true,
			})
			require.NoError(t, err)
			solid, err := f.AddMesh(ctx, Params{"positions": quad, "cells": [][]int{{0, 1, 2}}})
			require.NoError(t, err)
			_, err = f.AddMarkers(ctx, Params{"normal_to": solid, "indices": []int{3}})
			require.NoError(t, err)
			cloud, err := f.AddPoints(ctx, Params{"positions": quad[:3], "scalar_field": []float64{0, 1, 2}})
			require.NoError(t, err)
			require.NoError(t, f.Render(ctx))

			tests := []struct {
				name   string
				kind   Kind
				id     int
				params Params
				want   error
			}{
				{"wireframe shrinks below cells", Mesh, wire, Params{
					"positions":    quad[:2],
					"scalar_field": []float64{0, 1},
				}, ErrGeometry},
				{"solid shrinks below cells", Mesh, solid, Params{"positions": quad[:2]}, ErrGeometry},
				{"mesh shrinks below marker", Mesh, solid, Params{"positions": quad[:3]}, ErrGeometry},
				{"stale scalars", Points, cloud, Params{"positions": quad[:2]}, ErrScalarCount},
				{"invalid color", Points, cloud, Params{"color": "no-such-color"}, ErrInvalidColor},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					before, err := f.Record(ctx, tt.kind, tt.id)
					require.NoError(t, err)

					require.NotPanics(t, func() {
						err = f.Update(ctx, tt.kind, tt.id, mergeParams(tt.params, Params{"at": 2, "colormap": "plasma"}))
					})
					require.ErrorIs(t, err, tt.want)

					after, err := f.Record(ctx, tt.kind, tt.id)
					require.NoError(t, err)
					assert.Equal(t, before.Row(), after.Row(), "rejected update leaves the row unchanged")

					_, related, err := f.Style(ctx, tt.kind, tt.id)
					require.NoError(t, err)
					assert.False(t, related)
					assert.NotContains(t, st.Tables(), schema.StyleTable)

					require.NoError(t, f.Render(ctx))
				})
			}

			// A vertex count change that keeps the buffers consistent is fine.
			grown := append(slices.Clone(quad), []float64{2, 2, 0})
			require.NotPanics(t, func() {
				err = f.UpdateMesh(ctx, wire, Params{"positions": grown, "scalar_field": []float64{0, 1, 2, 3, 4}})
			})
			require.NoError(t, err)
			require.NoError(t, f.Render(ctx))

			snap, err := f.Record(ctx, Mesh, wire)
			require.NoError(t, err)
			assert.Equal(t, 5, snap.Array(schema.Positions).Len())

			if m.b != nil {
				obj, ok := m.b.Object(schema.TableName(Mesh, wire))
				require.True(t, ok)
				lines := obj.Geometry.(*render.LineSet)
				assert.Len(t, lines.Points, 5)
				assert.Len(t, lines.Colors, len(lines.Lines))
			}
		})
	}
}
