package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometry is matched by *GeometryError.
	ErrGeometry = errors.New("inconsistent geometry")
	// ErrScalarCount is matched by a *GeometryError whose scalar field does
	// not hold one value per element.
	ErrScalarCount = errors.New("scalar count does not match element count")
)

// GeometryError reports buffers of one object that do not fit together,
// for example cells referencing missing vertices.
type GeometryError struct {
	Kind   Kind
	Field  string
	Reason string
	cause  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Kind, e.Field, e.Reason)
}

func (e *GeometryError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrGeometry}
	}
	return []error{ErrGeometry, e.cause}
}

// Validate checks the merged state of an object before it is stored or
// rendered: cell indices against the vertex count, paired buffers against
// each other and the scalar field against the element count.
func Validate(s Snapshot) error {
	k := s.Kind()
	elements := s.Array(Positions).Len()

	switch k {
	case Mesh:
		triangles, err := s.Array(Cells).Triangles()
		if err != nil {
			return &GeometryError{Kind: k, Field: Cells, Reason: err.Error(), cause: err}
		}
		for i, t := range triangles {
			for _, idx := range t {
				if int(idx) >= elements {
					return &GeometryError{Kind: k, Field: Cells,
						Reason: fmt.Sprintf("cell %d references vertex %d of %d", i, idx, elements)}
				}
			}
		}
	case Arrows:
		if n := s.Array(Vectors).Len(); n != elements {
			return &GeometryError{Kind: k, Field: Vectors,
				Reason: fmt.Sprintf("%d positions but %d vectors", elements, n)}
		}
	case Symbols:
		if n := s.Array(Orientations).Len(); n != elements {
			return &GeometryError{Kind: k, Field: Orientations,
				Reason: fmt.Sprintf("%d positions but %d orientations", elements, n)}
		}
	case Markers:
		indices, err := s.Array(Indices).Indices()
		if err != nil {
			return &GeometryError{Kind: k, Field: Indices, Reason: err.Error(), cause: err}
		}
		elements = len(indices)
	}

	if n := s.Scalars().Len(); n > 0 && n != elements {
		return &GeometryError{Kind: k, Field: ScalarField, cause: ErrScalarCount,
			Reason: fmt.Sprintf("%d scalars for %d elements", n, elements)}
	}
	return nil
}

// ValidateTarget checks that every marker index of markers addresses a
// vertex of mesh.
func ValidateTarget(markers, mesh Snapshot) error {
	indices, err := markers.Array(Indices).Indices()
	if err != nil {
		return &GeometryError{Kind: Markers, Field: Indices, Reason: err.Error(), cause: err}
	}
	n := mesh.Array(Positions).Len()
	for i, idx := range indices {
		if idx >= n {
			return &GeometryError{Kind: Markers, Field: Indices,
				Reason: fmt.Sprintf("marker %d references vertex %d of %d", i, idx, n)}
		}
	}
	return nil
}
