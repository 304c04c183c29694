package actor

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vizsync/schema"
)

var (
	// ErrUnsupportedType is matched by *UnsupportedTypeError.
	ErrUnsupportedType = schema.ErrUnknownKind
	// ErrUnknownColormap is matched by *ColormapError.
	ErrUnknownColormap = errors.New("unknown colormap")
	// ErrScalarCount is returned when a scalar field does not have one value
	// per element.
	ErrScalarCount = schema.ErrScalarCount
	// ErrInvalidColor is returned for colors that are neither a CSS name nor
	// a hex string.
	ErrInvalidColor = errors.New("invalid color")
	// ErrNotCreated is returned when updating an actor before Create.
	ErrNotCreated = errors.New("actor not created")
	// ErrNoTarget is returned when a marker actor has no mesh to attach to.
	ErrNoTarget = errors.New("marker target mesh not available")
)

// UnsupportedTypeError reports an object type without an actor variant.
type UnsupportedTypeError struct {
	Kind schema.Kind
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no actor for object type %s", e.Kind)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// ColormapError reports an unknown colormap name.
type ColormapError struct {
	Name string
}

func (e *ColormapError) Error() string {
	return fmt.Sprintf("unknown colormap %q", e.Name)
}

func (e *ColormapError) Unwrap() error { return ErrUnknownColormap }
