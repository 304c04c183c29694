package actor

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

type symbolsVariant struct {
	pc *render.PointCloud
}

func (v *symbolsVariant) create(snap schema.Snapshot) (render.Geometry, error) {
	v.pc = &render.PointCloud{
		Symbol: snap.Text(schema.Symbol),
		Size:   float32(snap.Float(schema.Size)),
		Filled: snap.Bool(schema.Filled),
	}
	if err := v.set(snap); err != nil {
		return nil, err
	}
	return v.pc, nil
}

func (v *symbolsVariant) set(snap schema.Snapshot) error {
	points := snap.Array(schema.Positions).Vec3s()
	orient := snap.Array(schema.Orientations).Vec3s()
	if len(points) != len(orient) {
		return fmt.Errorf("%d positions but %d orientations", len(points), len(orient))
	}
	v.pc.Points = points
	v.pc.Orientations = orient
	return nil
}

func (v *symbolsVariant) update(snap schema.Snapshot, p schema.Patch) (render.UpdateFlags, error) {
	var flags render.UpdateFlags
	if p.Has(schema.Positions) {
		flags |= render.UpdatePoints
	}
	if p.Has(schema.Orientations) {
		flags |= render.UpdateNormals
	}
	if flags == 0 {
		return 0, nil
	}
	return flags, v.set(snap)
}

func (v *symbolsVariant) colorize(colors []math32.Vector3) error {
	v.pc.Colors = colors
	return nil
}

func (v *symbolsVariant) elements() int { return len(v.pc.Points) }
