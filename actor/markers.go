package actor

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

// markersVariant pins glyphs to vertices of a mesh actor. Positions and
// orientations are re-read from the mesh on every flush.
type markersVariant struct {
	target  *Actor
	mesh    *meshVariant
	indices []int
	pc      *render.PointCloud
}

func (v *markersVariant) create(snap schema.Snapshot) (render.Geometry, error) {
	if v.target == nil || v.target.kind != schema.Mesh || !v.target.created {
		return nil, fmt.Errorf("%w: Mesh_%d", ErrNoTarget, snap.Int(schema.NormalTo))
	}
	v.mesh = v.target.v.(*meshVariant)

	indices, err := snap.Array(schema.Indices).Indices()
	if err != nil {
		return nil, err
	}
	v.indices = indices
	v.pc = &render.PointCloud{
		Points:       make([]math32.Vector3, len(indices)),
		Orientations: make([]math32.Vector3, len(indices)),
		Symbol:       snap.Text(schema.Symbol),
		Size:         float32(snap.Float(schema.Size)),
		Filled:       snap.Bool(schema.Filled),
	}
	if _, err := v.follow(); err != nil {
		return nil, err
	}
	return v.pc, nil
}

func (v *markersVariant) follow() (render.UpdateFlags, error) {
	vertices := v.mesh.vertices()
	normals := render.VertexNormals(vertices, v.mesh.triangles)
	for i, idx := range v.indices {
		if idx >= len(vertices) {
			return 0, fmt.Errorf("marker %d references vertex %d of %d", i, idx, len(vertices))
		}
		v.pc.Points[i] = vertices[idx]
		v.pc.Orientations[i] = normals[idx]
	}
	return render.UpdatePoints | render.UpdateNormals, nil
}

// Markers have no mutable buffers of their own.
func (v *markersVariant) update(schema.Snapshot, schema.Patch) (render.UpdateFlags, error) {
	return 0, nil
}

func (v *markersVariant) colorize(colors []math32.Vector3) error {
	v.pc.Colors = colors
	return nil
}

func (v *markersVariant) elements() int { return len(v.indices) }
