package actor

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

const (
	// Head barbs start this fraction of the arrow length back from the tip
	// and spread sideways by barbSpread of the length.
	barbLength = 0.25
	barbSpread = 0.1
)

// arrowsVariant draws every arrow as three segments: shaft and two barbs.
type arrowsVariant struct {
	n  int
	ls *render.LineSet
}

func (v *arrowsVariant) create(snap schema.Snapshot) (render.Geometry, error) {
	v.ls = &render.LineSet{}
	if err := v.build(snap); err != nil {
		return nil, err
	}
	return v.ls, nil
}

func (v *arrowsVariant) build(snap schema.Snapshot) error {
	tails := snap.Array(schema.Positions).Vec3s()
	vecs := snap.Array(schema.Vectors).Vec3s()
	if len(tails) != len(vecs) {
		return fmt.Errorf("%d positions but %d vectors", len(tails), len(vecs))
	}

	points := make([]math32.Vector3, 0, 4*len(tails))
	lines := make([][2]uint32, 0, 3*len(tails))
	for i, tail := range tails {
		head := tail.Add(vecs[i])
		side := perpendicular(vecs[i]).MulScalar(barbSpread * vecs[i].Length())
		back := head.Sub(vecs[i].MulScalar(barbLength))

		base := uint32(4 * i)
		points = append(points, tail, head, back.Add(side), back.Sub(side))
		lines = append(lines, [2]uint32{base, base + 1}, [2]uint32{base + 1, base + 2}, [2]uint32{base + 1, base + 3})
	}

	v.n = len(tails)
	v.ls.Points = points
	v.ls.Lines = lines
	if len(v.ls.Colors) != len(lines) {
		v.ls.Colors = nil
	}
	return nil
}

// perpendicular returns a unit vector orthogonal to d.
func perpendicular(d math32.Vector3) math32.Vector3 {
	up := math32.Vec3(0, 0, 1)
	if math32.Abs(d.Normal().Dot(up)) > 0.9 {
		up = math32.Vec3(1, 0, 0)
	}
	p := d.Cross(up)
	if p.Length() == 0 {
		return math32.Vector3{}
	}
	return p.Normal()
}

func (v *arrowsVariant) update(snap schema.Snapshot, p schema.Patch) (render.UpdateFlags, error) {
	if !p.Has(schema.Positions) && !p.Has(schema.Vectors) {
		return 0, nil
	}
	return render.UpdatePoints, v.build(snap)
}

func (v *arrowsVariant) colorize(colors []math32.Vector3) error {
	lc := make([]math32.Vector3, 0, 3*len(colors))
	for _, c := range colors {
		lc = append(lc, c, c, c)
	}
	v.ls.Colors = lc
	return nil
}

func (v *arrowsVariant) elements() int { return v.n }
