package actor

import (
	"fmt"
	"math"
	"strings"

	"cogentcore.org/core/colors"
	"cogentcore.org/core/colors/colormap"
	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/vector"
)

// LookupColormap returns the named colormap, ignoring case.
func LookupColormap(name string) (*colormap.Map, error) {
	if cm, ok := colormap.AvailableMaps[name]; ok {
		return cm, nil
	}
	for n, cm := range colormap.AvailableMaps {
		if strings.EqualFold(n, name) {
			return cm, nil
		}
	}
	return nil, &ColormapError{Name: name}
}

// Normalize maps values linearly to [0,1] by their own min and max.
// A constant field maps to 0.
func Normalize(values []float64) []float32 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]float32, len(values))
	span := hi - lo
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return out
	}
	for i, v := range values {
		out[i] = float32((v - lo) / span)
	}
	return out
}

// MapScalars returns one RGB color per scalar. An empty field yields nil.
func MapScalars(scalars vector.Array, name string) ([]math32.Vector3, error) {
	cm, err := LookupColormap(name)
	if err != nil {
		return nil, err
	}
	if scalars.IsEmpty() {
		return nil, nil
	}
	if scalars.Width() != 1 {
		return nil, fmt.Errorf("scalar field must have width 1, got %d", scalars.Width())
	}

	norm := Normalize(scalars.Flat())
	out := make([]math32.Vector3, len(norm))
	for i, v := range norm {
		out[i] = rgb(colors.AsRGBA(cm.Map(v)))
	}
	return out, nil
}

func rgb(c interface{ RGBA() (r, g, b, a uint32) }) math32.Vector3 {
	r, g, b, _ := c.RGBA()
	return math32.Vec3(float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff)
}
