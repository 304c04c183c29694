// Package demo drives a Factory through a deforming scene: two sphere
// meshes, a point cloud, a few arrows and markers, all jittered every step.
// Halfway through, the scalar fields and colors switch.
package demo

import (
	"context"
	"fmt"

	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/testutil"
)

// Scene sizes the demo.
type Scene struct {
	Steps    int
	Rings    int
	Segments int
	Seed     int64
	// Switch is the step at which scalars and colors change. Zero means
	// halfway.
	Switch int
	// Jitter is the amplitude of the per-step noise. Zero means 0.1.
	Jitter float64
}

// Tick is called after every rendered frame, e.g. to pace playback.
type Tick func(ctx context.Context, step int) error

// Run adds the scene objects to f and renders Steps frames. It returns the
// number of rendered frames.
func Run(ctx context.Context, f *vizsync.Factory, s Scene, tick Tick) (int, error) {
	if s.Switch == 0 {
		s.Switch = s.Steps / 2
	}
	if s.Jitter == 0 {
		s.Jitter = 0.1
	}
	rng := testutil.NewRNG(s.Seed)
	positions, cells := testutil.Sphere(s.Rings, s.Segments)

	ids := struct{ solid, plain, cloud, arrows int }{}
	var err error

	if ids.solid, err = f.AddMesh(ctx, vizsync.Params{
		"positions":    positions,
		"cells":        cells,
		"at":           0,
		"opacity":      0.8,
		"scalar_field": testutil.Column(positions, 1),
		"wireframe":    true,
	}); err != nil {
		return 0, fmt.Errorf("add mesh: %w", err)
	}
	if ids.plain, err = f.AddMesh(ctx, vizsync.Params{
		"positions": positions,
		"cells":     cells,
		"at":        1,
		"color":     "green",
		"wireframe": true,
	}); err != nil {
		return 0, fmt.Errorf("add mesh: %w", err)
	}
	if ids.cloud, err = f.AddPoints(ctx, vizsync.Params{
		"positions":  positions,
		"at":         2,
		"color":      "red",
		"point_size": 3,
		"opacity":    0.8,
	}); err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}

	// On a unit sphere the outward normal is the position itself.
	head := positions[:min(5, len(positions))]
	vectors := make([][]float64, len(head))
	for i, p := range head {
		vectors[i] = []float64{2 * p[0], 2 * p[1], 2 * p[2]}
	}
	ramp := []float64{-1, -0.5, 0, 0.5, 1}[:len(head)]
	if ids.arrows, err = f.AddArrows(ctx, vizsync.Params{
		"positions":    head,
		"vectors":      vectors,
		"at":           2,
		"opacity":      0.8,
		"scalar_field": ramp,
	}); err != nil {
		return 0, fmt.Errorf("add arrows: %w", err)
	}
	if _, err = f.AddMarkers(ctx, vizsync.Params{
		"normal_to": ids.solid,
		"indices":   []int{0, len(positions) - 1},
		"symbol":    "^",
		"color":     "white",
	}); err != nil {
		return 0, fmt.Errorf("add markers: %w", err)
	}

	frames := 0
	for step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		if err := f.UpdateMesh(ctx, ids.solid, vizsync.Params{"positions": rng.Jitter(positions, s.Jitter)}); err != nil {
			return frames, err
		}
		if err := f.UpdateMesh(ctx, ids.plain, vizsync.Params{"positions": rng.Jitter(positions, s.Jitter)}); err != nil {
			return frames, err
		}
		if err := f.UpdatePoints(ctx, ids.cloud, vizsync.Params{"positions": rng.Jitter(positions, s.Jitter)}); err != nil {
			return frames, err
		}

		if step == s.Switch {
			// wireframe is fixed at creation; the toggle is recorded only.
			if err := f.UpdateMesh(ctx, ids.solid, vizsync.Params{
				"scalar_field": testutil.Column(positions, 2),
				"wireframe":    false,
				"opacity":      0.8,
			}); err != nil {
				return frames, err
			}
			if err := f.UpdateMesh(ctx, ids.plain, vizsync.Params{
				"color":     "olive",
				"opacity":   0.9,
				"wireframe": false,
			}); err != nil {
				return frames, err
			}
			reversed := make([]float64, len(ramp))
			for i, v := range ramp {
				reversed[len(ramp)-1-i] = v
			}
			if err := f.UpdateArrows(ctx, ids.arrows, vizsync.Params{"scalar_field": reversed}); err != nil {
				return frames, err
			}
		}

		if err := f.Render(ctx); err != nil {
			return frames, err
		}
		frames++
		if tick != nil {
			if err := tick(ctx, step); err != nil {
				return frames, err
			}
		}
	}
	return frames, nil
}
