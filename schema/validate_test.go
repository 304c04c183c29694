package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSnapshot(t *testing.T, k Kind, params Params) Snapshot {
	t.Helper()
	p, err := FormatCreate(k, params)
	require.NoError(t, err)
	return NewSnapshot(k, p.Fields)
}

func TestValidate(t *testing.T) {
	for _, k := range Kinds() {
		assert.NoError(t, Validate(mustSnapshot(t, k, validParams(k))), k.String())
	}

	tests := []struct {
		name   string
		kind   Kind
		params Params
		field  string
		want   error
	}{
		{"cell out of range", Mesh, Params{Positions: tri, Cells: [][]int{{0, 1, 3}}}, Cells, ErrGeometry},
		{"cells not triangles", Mesh, Params{Positions: tri, Cells: [][]int{{0, 1}}}, Cells, ErrGeometry},
		{"mesh scalars", Mesh, Params{Positions: tri, Cells: cells, ScalarField: []float64{1, 2}}, ScalarField, ErrScalarCount},
		{"points scalars", Points, Params{Positions: tri, ScalarField: []float64{1, 2, 3, 4}}, ScalarField, ErrScalarCount},
		{"vectors", Arrows, Params{Positions: tri, Vectors: tri[:1]}, Vectors, ErrGeometry},
		{"orientations", Symbols, Params{Positions: tri[:2], Orientations: tri}, Orientations, ErrGeometry},
		{"marker scalars", Markers, Params{NormalTo: 0, Indices: []int{0, 1}, ScalarField: []float64{1}}, ScalarField, ErrScalarCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustSnapshot(t, tt.kind, tt.params))
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrGeometry)

			var ge *GeometryError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.field, ge.Field)
			assert.Equal(t, tt.kind, ge.Kind)
		})
	}
}

func TestValidate_MergedUpdate(t *testing.T) {
	snap := mustSnapshot(t, Points, Params{Positions: tri, ScalarField: []float64{0, 1, 2}})

	p, err := FormatUpdate(Points, Params{Positions: tri[:2]})
	require.NoError(t, err)
	assert.ErrorIs(t, Validate(snap.Merge(p)), ErrScalarCount, "scalars of the merged state must follow positions")

	p, err = FormatUpdate(Points, Params{Positions: tri[:2], ScalarField: []float64{5, 6}})
	require.NoError(t, err)
	assert.NoError(t, Validate(snap.Merge(p)))
}

func TestValidateTarget(t *testing.T) {
	mesh := mustSnapshot(t, Mesh, Params{Positions: tri, Cells: cells})

	assert.NoError(t, ValidateTarget(mustSnapshot(t, Markers, Params{NormalTo: 0, Indices: []int{0, 2}}), mesh))

	err := ValidateTarget(mustSnapshot(t, Markers, Params{NormalTo: 0, Indices: []int{3}}), mesh)
	var ge *GeometryError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, Indices, ge.Field)
	assert.ErrorIs(t, err, ErrGeometry)
}
