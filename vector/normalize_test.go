package vector

import (
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ShapeInvariance(t *testing.T) {
	single, err := Normalize([]float64{1, 2, 3}, true)
	require.NoError(t, err)
	wrapped, err := Normalize([][]float64{{1, 2, 3}}, true)
	require.NoError(t, err)
	assert.True(t, single.Equal(wrapped))
	assert.Equal(t, 1, single.Len())
	assert.Equal(t, 3, single.Width())

	flat2D, err := Normalize([]float64{1, 2}, true)
	require.NoError(t, err)
	padded, err := Normalize([][]float64{{1, 2, 0}}, true)
	require.NoError(t, err)
	assert.True(t, flat2D.Equal(padded))
}

func TestNormalize_Inputs(t *testing.T) {
	tests := []struct {
		name          string
		in            any
		expectTriples bool
		want          [][]float64
	}{
		{"int rows", [][]int{{0, 1, 2}, {2, 1, 3}}, false, [][]float64{{0, 1, 2}, {2, 1, 3}}},
		{"float32 rows padded", [][]float32{{1, 2}, {3, 4}}, true, [][]float64{{1, 2, 0}, {3, 4, 0}}},
		{"fixed arrays", [][3]float64{{1, 1, 1}}, true, [][]float64{{1, 1, 1}}},
		{"math32 vectors", []math32.Vector3{math32.Vec3(1, 2, 3)}, true, [][]float64{{1, 2, 3}}},
		{"math32 vector2 padded", []math32.Vector2{math32.Vec2(1, 2)}, true, [][]float64{{1, 2, 0}}},
		{"single math32 vector", math32.Vec3(4, 5, 6), true, [][]float64{{4, 5, 6}}},
		{"flat scalars", []float64{0, 1, 2}, false, [][]float64{{0, 1, 2}}},
		{"single scalar", 7, false, [][]float64{{7}}},
		{"mixed any", []any{1, 2.5, uint8(3)}, true, [][]float64{{1, 2.5, 3}}},
		{"array passthrough", MustNormalize([][]float64{{1, 2, 3}}, true), true, [][]float64{{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in, tt.expectTriples)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rows())
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	a, err := Normalize([]float64{}, false)
	require.NoError(t, err)
	assert.True(t, a.IsEmpty())

	a, err = Normalize([][]float64{}, true)
	require.NoError(t, err)
	assert.True(t, a.IsEmpty())
	assert.Equal(t, 3, a.Width())
}

func TestNormalize_ZeroWidthRows(t *testing.T) {
	a, err := Normalize([][]float64{{}, {}}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, [][]float64{{0, 0, 0}, {0, 0, 0}}, a.Rows())

	a, err = Normalize([]any{[]int{}, []int{}, []int{}}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())

	_, err = Normalize([][]float64{{}, {}}, false)
	assert.ErrorIs(t, err, ErrShape)
}

func TestNormalize_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "1,2,3"},
		{"ragged", [][]float64{{1, 2, 3}, {1, 2}}},
		{"non numeric component", []any{1, "two", 3}},
		{"too deep", [][][]float64{{{1}}}},
		{"too wide for coordinates", [][]float64{{1, 2, 3, 4}}},
		{"mixed scalar and tuple", []any{[]float64{1, 2, 3}, 4.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in, true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShape))

			var se *ShapeError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestNormalize_OwnsBuffer(t *testing.T) {
	src := []float64{1, 2, 3}
	a, err := Normalize(src, true)
	require.NoError(t, err)
	src[0] = 99
	assert.Equal(t, 1.0, a.At(0, 0))

	// Repeated reads observe the same data.
	assert.Equal(t, a.Rows(), a.Rows())
}

func TestArray_Views(t *testing.T) {
	a := MustNormalize([][]int{{0, 1, 2}, {2, 3, 0}}, false)

	tris, err := a.Triangles()
	require.NoError(t, err)
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {2, 3, 0}}, tris)

	idx, err := a.Indices()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 2, 3, 0}, idx)

	vs := MustNormalize([]float64{1, 2}, true).Vec3s()
	assert.Equal(t, []math32.Vector3{math32.Vec3(1, 2, 0)}, vs)

	_, err = MustNormalize([]float64{0.5, 1, 2}, false).Indices()
	assert.ErrorIs(t, err, ErrShape)
}

func TestFromFlat(t *testing.T) {
	a, err := FromFlat(2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	_, err = FromFlat(3, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShape)
}
