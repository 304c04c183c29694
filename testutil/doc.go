// Package testutil provides geometry fixtures for tests, benchmarks and
// the demo scene.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	moved := rng.Jitter(positions, 0.1) // uniform noise in [0, 0.1)
//	scalars := rng.Scalars(len(positions))
//
// # Meshes
//
//	positions, cells := testutil.Grid(4, 3)
//	positions, cells = testutil.Sphere(8, 16)
package testutil
