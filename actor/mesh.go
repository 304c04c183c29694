package actor

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

type meshVariant struct {
	wireframe bool
	triangles [][3]uint32
	tri       *render.TriangleMesh
	lines     *render.LineSet
}

func (m *meshVariant) create(snap schema.Snapshot) (render.Geometry, error) {
	vertices := snap.Array(schema.Positions).Vec3s()
	triangles, err := snap.Array(schema.Cells).Triangles()
	if err != nil {
		return nil, err
	}
	if err := checkCells(triangles, len(vertices)); err != nil {
		return nil, err
	}
	m.triangles = triangles

	if snap.Bool(schema.Wireframe) {
		m.wireframe = true
		m.lines = &render.LineSet{Points: vertices, Lines: Edges(triangles)}
		return m.lines, nil
	}

	m.tri = &render.TriangleMesh{Vertices: vertices, Triangles: triangles}
	if snap.Bool(schema.ComputeNormals) {
		m.tri.Normals = render.VertexNormals(vertices, triangles)
	}
	return m.tri, nil
}

func (m *meshVariant) update(snap schema.Snapshot, p schema.Patch) (render.UpdateFlags, error) {
	if !p.Has(schema.Positions) {
		return 0, nil
	}
	vertices := snap.Array(schema.Positions).Vec3s()
	// Cells are fixed at creation; new positions must still cover them.
	if err := checkCells(m.triangles, len(vertices)); err != nil {
		return 0, err
	}
	if m.wireframe {
		m.lines.Points = vertices
	} else {
		m.tri.Vertices = vertices
	}
	return render.UpdatePoints, nil
}

func (m *meshVariant) colorize(colors []math32.Vector3) error {
	if !m.wireframe {
		m.tri.Colors = colors
		return nil
	}
	// Line segments carry one color each: the color of the first endpoint.
	lc := make([]math32.Vector3, len(m.lines.Lines))
	for i, e := range m.lines.Lines {
		if int(e[0]) >= len(colors) {
			return fmt.Errorf("%w: edge %d starts at vertex %d of %d", ErrScalarCount, i, e[0], len(colors))
		}
		lc[i] = colors[e[0]]
	}
	m.lines.Colors = lc
	return nil
}

func (m *meshVariant) elements() int { return len(m.vertices()) }

func (m *meshVariant) vertices() []math32.Vector3 {
	if m.wireframe {
		return m.lines.Points
	}
	return m.tri.Vertices
}

func checkCells(triangles [][3]uint32, vertices int) error {
	for i, t := range triangles {
		for _, idx := range t {
			if int(idx) >= vertices {
				return fmt.Errorf("cell %d references vertex %d of %d", i, idx, vertices)
			}
		}
	}
	return nil
}
