package vector

import (
	"fmt"
	"slices"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/internal/conv"
)

// Array is an ordered sequence of fixed-width numeric rows.
//
// The zero value is an empty array. Arrays returned by this package own
// their buffer; treat them as immutable once handed to other components.
type Array struct {
	width int
	data  []float64
}

// New returns a zero-filled array with the given shape.
func New(rows, width int) Array {
	if rows <= 0 || width <= 0 {
		return Array{width: max(width, 0)}
	}
	return Array{width: width, data: make([]float64, rows*width)}
}

// FromFlat wraps data as rows of the given width. The slice is copied.
func FromFlat(width int, data []float64) (Array, error) {
	if width <= 0 {
		if len(data) == 0 {
			return Array{}, nil
		}
		return Array{}, shapeErr(-1, "width %d for %d values", width, len(data))
	}
	if len(data)%width != 0 {
		return Array{}, shapeErr(-1, "%d values do not fill rows of width %d", len(data), width)
	}
	return Array{width: width, data: slices.Clone(data)}, nil
}

// Len returns the number of rows.
func (a Array) Len() int {
	if a.width == 0 {
		return 0
	}
	return len(a.data) / a.width
}

// Width returns the number of components per row.
func (a Array) Width() int { return a.width }

// IsEmpty reports whether the array has no rows.
func (a Array) IsEmpty() bool { return a.Len() == 0 }

// Row returns row i. The returned slice aliases the array buffer and must
// not be modified.
func (a Array) Row(i int) []float64 {
	return a.data[i*a.width : (i+1)*a.width : (i+1)*a.width]
}

// At returns component j of row i.
func (a Array) At(i, j int) float64 { return a.data[i*a.width+j] }

// Flat returns a copy of all components in row-major order.
func (a Array) Flat() []float64 { return slices.Clone(a.data) }

// Rows returns a copy of the array as nested slices.
func (a Array) Rows() [][]float64 {
	out := make([][]float64, a.Len())
	for i := range out {
		out[i] = slices.Clone(a.Row(i))
	}
	return out
}

// Clone returns a deep copy.
func (a Array) Clone() Array {
	return Array{width: a.width, data: slices.Clone(a.data)}
}

// Equal reports whether both arrays have the same shape and components.
func (a Array) Equal(b Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Len() == 0 {
		return true
	}
	return a.width == b.width && slices.Equal(a.data, b.data)
}

// Vec3s converts the rows to math32 vectors. Rows narrower than three are
// zero-padded, wider rows are cut to their first three components.
func (a Array) Vec3s() []math32.Vector3 {
	out := make([]math32.Vector3, a.Len())
	for i := range out {
		row := a.Row(i)
		var v [3]float32
		for j := 0; j < len(row) && j < 3; j++ {
			v[j] = float32(row[j])
		}
		out[i] = math32.Vec3(v[0], v[1], v[2])
	}
	return out
}

// Indices returns all components as non-negative integer indices in
// row-major order.
func (a Array) Indices() ([]int, error) {
	out := make([]int, len(a.data))
	for i, f := range a.data {
		idx, err := conv.FloatToIndex(f)
		if err != nil {
			return nil, shapeErr(i/max(a.width, 1), "%v", err)
		}
		out[i] = idx
	}
	return out, nil
}

// Triangles returns the rows of a width-3 index array as triangles.
func (a Array) Triangles() ([][3]uint32, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	if a.width != 3 {
		return nil, shapeErr(-1, "triangles need rows of width 3, got %d", a.width)
	}
	idx, err := a.Indices()
	if err != nil {
		return nil, err
	}
	out := make([][3]uint32, a.Len())
	for i := range out {
		for j := 0; j < 3; j++ {
			u, err := conv.IntToUint32(idx[i*3+j])
			if err != nil {
				return nil, shapeErr(i, "%v", err)
			}
			out[i][j] = u
		}
	}
	return out, nil
}

// String implements fmt.Stringer.
func (a Array) String() string {
	return fmt.Sprintf("Array(%dx%d)", a.Len(), a.width)
}
