package vector

import (
	"reflect"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/internal/conv"
)

// Normalize coerces value into an Array.
//
// A flat tuple of scalars (or a single scalar) becomes a one-row array.
// A sequence of tuples becomes one row per tuple; all tuples must share the
// same width. With expectTriples, rows narrower than three are right-padded
// with zeros and wider rows are rejected. Rows of width zero become zero
// triples with expectTriples and are rejected otherwise.
func Normalize(value any, expectTriples bool) (Array, error) {
	rows, width, data, err := flatten(value)
	if err != nil {
		return Array{}, err
	}
	if rows == 0 {
		if expectTriples {
			return Array{width: 3}, nil
		}
		return Array{width: width}, nil
	}
	if width == 0 {
		if !expectTriples {
			return Array{}, shapeErr(-1, "%d rows of width 0", rows)
		}
		return New(rows, 3), nil
	}
	if !expectTriples || width == 3 {
		return Array{width: width, data: data}, nil
	}
	if width > 3 {
		return Array{}, shapeErr(-1, "expected coordinate rows of at most 3 components, got %d", width)
	}

	padded := make([]float64, rows*3)
	for i := 0; i < rows; i++ {
		copy(padded[i*3:i*3+width], data[i*width:(i+1)*width])
	}
	return Array{width: 3, data: padded}, nil
}

// MustNormalize is like Normalize but panics on malformed input.
// Intended for tests and literals.
func MustNormalize(value any, expectTriples bool) Array {
	a, err := Normalize(value, expectTriples)
	if err != nil {
		panic(err)
	}
	return a
}

// flatten returns the row count, the row width and the row-major values.
func flatten(value any) (int, int, []float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, 0, nil, shapeErr(-1, "nil input")
	case Array:
		return v.Len(), v.width, v.Flat(), nil
	case *Array:
		if v == nil {
			return 0, 0, nil, shapeErr(-1, "nil input")
		}
		return v.Len(), v.width, v.Flat(), nil
	case math32.Vector3:
		return 1, 3, []float64{float64(v.X), float64(v.Y), float64(v.Z)}, nil
	case math32.Vector2:
		return 1, 2, []float64{float64(v.X), float64(v.Y)}, nil
	case []math32.Vector3:
		data := make([]float64, 0, len(v)*3)
		for _, p := range v {
			data = append(data, float64(p.X), float64(p.Y), float64(p.Z))
		}
		return len(v), 3, data, nil
	case []math32.Vector2:
		data := make([]float64, 0, len(v)*2)
		for _, p := range v {
			data = append(data, float64(p.X), float64(p.Y))
		}
		return len(v), 2, data, nil
	case []float64:
		return min(len(v), 1), len(v), append([]float64(nil), v...), nil
	case [][]float64:
		return flattenRows(len(v), func(i int) []float64 { return v[i] })
	}

	rv := reflect.ValueOf(value)
	if f, ok := conv.ToFloat64(rv); ok {
		return 1, 1, []float64{f}, nil
	}
	if !isSequence(rv) {
		return 0, 0, nil, shapeErr(-1, "unsupported input type %T", value)
	}

	n := rv.Len()
	if n == 0 {
		return 0, 0, nil, nil
	}

	first := elem(rv.Index(0))
	if _, ok := conv.ToFloat64(first); ok {
		row, err := scalarRow(rv, 0)
		if err != nil {
			return 0, 0, nil, err
		}
		return 1, len(row), row, nil
	}

	var (
		width = -1
		data  []float64
	)
	for i := 0; i < n; i++ {
		row, err := tupleRow(elem(rv.Index(i)), i)
		if err != nil {
			return 0, 0, nil, err
		}
		if width < 0 {
			width = len(row)
			data = make([]float64, 0, n*width)
		} else if len(row) != width {
			return 0, 0, nil, shapeErr(i, "ragged input: width %d, expected %d", len(row), width)
		}
		data = append(data, row...)
	}
	return n, width, data, nil
}

func flattenRows(n int, row func(int) []float64) (int, int, []float64, error) {
	if n == 0 {
		return 0, 0, nil, nil
	}
	width := len(row(0))
	data := make([]float64, 0, n*width)
	for i := 0; i < n; i++ {
		r := row(i)
		if len(r) != width {
			return 0, 0, nil, shapeErr(i, "ragged input: width %d, expected %d", len(r), width)
		}
		data = append(data, r...)
	}
	return n, width, data, nil
}

// tupleRow reads one row of a sequence-of-tuples input.
func tupleRow(v reflect.Value, i int) ([]float64, error) {
	if v.IsValid() && v.CanInterface() {
		switch p := v.Interface().(type) {
		case math32.Vector3:
			return []float64{float64(p.X), float64(p.Y), float64(p.Z)}, nil
		case math32.Vector2:
			return []float64{float64(p.X), float64(p.Y)}, nil
		}
	}
	if !isSequence(v) {
		return nil, shapeErr(i, "expected a tuple of numbers, got %s", kindName(v))
	}
	return scalarRow(v, i)
}

// scalarRow reads a sequence whose elements must all be numbers.
func scalarRow(v reflect.Value, i int) ([]float64, error) {
	row := make([]float64, v.Len())
	for j := range row {
		f, ok := conv.ToFloat64(elem(v.Index(j)))
		if !ok {
			return nil, shapeErr(i, "component %d is %s, not a number", j, kindName(elem(v.Index(j))))
		}
		row[j] = f
	}
	return row, nil
}

func isSequence(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}

// elem unwraps interface and pointer indirections.
func elem(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func kindName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Kind().String()
}
