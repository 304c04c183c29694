package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Points returns n random points in the unit cube.
func (r *RNG) Points(n int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = []float64{r.rand.Float64(), r.rand.Float64(), r.rand.Float64()}
	}
	return pts
}

// Jitter returns a copy of positions with uniform noise in [0, amp) added
// to every coordinate. Locks only once per call.
func (r *RNG) Jitter(positions [][]float64, amp float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]float64, len(positions))
	for i, p := range positions {
		row := make([]float64, len(p))
		for j, v := range p {
			row[j] = v + amp*r.rand.Float64()
		}
		out[i] = row
	}
	return out
}

// Scalars returns n values in [-1, 1).
func (r *RNG) Scalars(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = 2*r.rand.Float64() - 1
	}
	return out
}

// Grid returns a flat nx by ny vertex grid in the XY plane, spanning
// [0, nx-1] by [0, ny-1], split into two triangles per quad.
func Grid(nx, ny int) ([][]float64, [][]int) {
	positions := make([][]float64, 0, nx*ny)
	for j := range ny {
		for i := range nx {
			positions = append(positions, []float64{float64(i), float64(j), 0})
		}
	}

	var cells [][]int
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			a := j*nx + i
			b := a + 1
			c := a + nx
			d := c + 1
			cells = append(cells, []int{a, b, d}, []int{a, d, c})
		}
	}
	return positions, cells
}

// Sphere returns a UV sphere of radius 1 with rings latitude bands and
// segments longitude bands. Poles are single vertices.
func Sphere(rings, segments int) ([][]float64, [][]int) {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	positions := [][]float64{{0, 0, 1}}
	for ring := 1; ring < rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		for seg := range segments {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			positions = append(positions, []float64{
				math.Sin(theta) * math.Cos(phi),
				math.Sin(theta) * math.Sin(phi),
				math.Cos(theta),
			})
		}
	}
	south := len(positions)
	positions = append(positions, []float64{0, 0, -1})

	vertex := func(ring, seg int) int {
		return 1 + (ring-1)*segments + seg%segments
	}

	var cells [][]int
	for seg := range segments {
		cells = append(cells, []int{0, vertex(1, seg), vertex(1, seg+1)})
	}
	for ring := 1; ring < rings-1; ring++ {
		for seg := range segments {
			a, b := vertex(ring, seg), vertex(ring, seg+1)
			c, d := vertex(ring+1, seg), vertex(ring+1, seg+1)
			cells = append(cells, []int{a, c, d}, []int{a, d, b})
		}
	}
	for seg := range segments {
		cells = append(cells, []int{vertex(rings-1, seg), south, vertex(rings-1, seg+1)})
	}
	return positions, cells
}

// Column returns coordinate axis (0, 1 or 2) of every position.
func Column(positions [][]float64, axis int) []float64 {
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = p[axis]
	}
	return out
}
