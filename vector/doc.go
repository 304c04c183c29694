// Package vector normalizes caller-supplied numeric input into the single
// canonical geometry representation used across vizsync.
//
// Producers hand geometry over in whatever shape they happen to hold it: a
// single point or a list of points, 2D or 3D coordinates, float32 or int
// slices, cogentcore math32 vectors. Normalize coerces all of these into an
// Array: an ordered sequence of fixed-width rows backed by one flat float64
// buffer.
//
//	a, err := vector.Normalize([]float64{1, 2}, true)      // 1 row: [1 2 0]
//	a, err := vector.Normalize([][]int{{0, 1, 2}}, false)  // 1 row: [0 1 2]
//	a, err := vector.Normalize(verts, true)                 // []math32.Vector3
//
// Ragged or non-numeric input fails with a *ShapeError; nothing is truncated.
package vector
