// Package render defines the canonical geometry, material and backend
// contract that actors draw through.
//
// Geometries are handed to a Backend once with Add and then mutated in
// place by their owner; Update tells the backend which buffers changed.
package render

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
)

var (
	// ErrDuplicate is returned when adding a renderable name twice.
	ErrDuplicate = errors.New("renderable already exists")
	// ErrUnknown is returned when updating a name that was never added.
	ErrUnknown = errors.New("unknown renderable")
	// ErrClosed is returned by a closed backend.
	ErrClosed = errors.New("backend closed")
)

// Shader selects how a material is lit.
type Shader uint8

const (
	// ShaderSolid is lit, filled shading.
	ShaderSolid Shader = iota
	// ShaderUnlitLine draws thin unlit lines.
	ShaderUnlitLine
)

func (s Shader) String() string {
	switch s {
	case ShaderSolid:
		return "solid"
	case ShaderUnlitLine:
		return "unlit-line"
	default:
		return fmt.Sprintf("Shader(%d)", uint8(s))
	}
}

// Material is the appearance of one renderable.
type Material struct {
	// BaseColor is RGBA in [0,1].
	BaseColor math32.Vector4
	Shader    Shader
	LineWidth float32
	PointSize float32
}

// Geometry is one of *TriangleMesh, *LineSet or *PointCloud.
type Geometry interface {
	// Bounds returns the axis aligned bounding box of the vertices.
	Bounds() math32.Box3
	geometry()
}

// TriangleMesh is indexed triangle geometry.
type TriangleMesh struct {
	Vertices  []math32.Vector3
	Normals   []math32.Vector3
	Triangles [][3]uint32
	// Colors holds one RGB color per vertex, or nil for the base color.
	Colors []math32.Vector3
}

// LineSet is indexed line segment geometry.
type LineSet struct {
	Points []math32.Vector3
	Lines  [][2]uint32
	// Colors holds one RGB color per line, or nil for the base color.
	Colors []math32.Vector3
}

// PointCloud is a set of points, optionally drawn as oriented glyphs.
type PointCloud struct {
	Points []math32.Vector3
	// Orientations holds one direction per point for glyph clouds.
	Orientations []math32.Vector3
	// Colors holds one RGB color per point, or nil for the base color.
	Colors []math32.Vector3
	// Symbol is the glyph shape; empty draws plain points.
	Symbol string
	// Size is the glyph size in world units.
	Size   float32
	Filled bool
}

func (*TriangleMesh) geometry() {}
func (*LineSet) geometry()      {}
func (*PointCloud) geometry()   {}

// Bounds implements Geometry.
func (m *TriangleMesh) Bounds() math32.Box3 { return bounds(m.Vertices) }

// Bounds implements Geometry.
func (l *LineSet) Bounds() math32.Box3 { return bounds(l.Points) }

// Bounds implements Geometry.
func (p *PointCloud) Bounds() math32.Box3 { return bounds(p.Points) }

func bounds(vs []math32.Vector3) math32.Box3 {
	b := math32.B3Empty()
	for _, v := range vs {
		b.ExpandByPoint(v)
	}
	return b
}

// UpdateFlags tell a backend which buffers of a geometry changed.
type UpdateFlags uint8

const (
	// UpdatePoints marks vertex or point positions.
	UpdatePoints UpdateFlags = 1 << iota
	// UpdateNormals marks normals or orientations.
	UpdateNormals
	// UpdateColors marks per-element colors.
	UpdateColors
	// UpdateMaterial marks the material.
	UpdateMaterial
)

// Has reports whether all bits of f are set.
func (u UpdateFlags) Has(f UpdateFlags) bool { return u&f == f }

// Backend draws renderables into windows indexed by at.
type Backend interface {
	// Add registers a renderable. The backend keeps the pointers and reads
	// them again on Update and Render.
	Add(name string, at int, g Geometry, mat *Material) error
	// Update marks buffers of a renderable as changed.
	Update(name string, flags UpdateFlags) error
	// Render presents one frame.
	Render() error
	// Close releases backend resources. It is idempotent.
	Close() error
}
