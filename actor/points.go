package actor

import (
	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

type pointsVariant struct {
	pc *render.PointCloud
}

func (v *pointsVariant) create(snap schema.Snapshot) (render.Geometry, error) {
	v.pc = &render.PointCloud{Points: snap.Array(schema.Positions).Vec3s()}
	return v.pc, nil
}

func (v *pointsVariant) update(snap schema.Snapshot, p schema.Patch) (render.UpdateFlags, error) {
	if !p.Has(schema.Positions) {
		return 0, nil
	}
	v.pc.Points = snap.Array(schema.Positions).Vec3s()
	return render.UpdatePoints, nil
}

func (v *pointsVariant) colorize(colors []math32.Vector3) error {
	v.pc.Colors = colors
	return nil
}

func (v *pointsVariant) elements() int { return len(v.pc.Points) }
