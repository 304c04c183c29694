package vizsync

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vizsync/actor"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/vector"
)

var (
	// ErrUnknownObject is returned when updating an object that was never added.
	ErrUnknownObject = errors.New("unknown object")

	// ErrClosed is returned by operations on a closed Factory.
	ErrClosed = errors.New("factory closed")

	// ErrInvalidOptions is returned by Open for inconsistent options.
	ErrInvalidOptions = errors.New("invalid options")
)

// Errors of the formatting and rendering layers, re-exported for callers
// that only import this package.
var (
	ErrShape           = vector.ErrShape
	ErrMissingField    = schema.ErrMissingField
	ErrInvalidField    = schema.ErrInvalidField
	ErrUnsupportedType = actor.ErrUnsupportedType
	ErrUnknownColormap = actor.ErrUnknownColormap
	ErrInvalidColor    = actor.ErrInvalidColor
	ErrGeometry        = schema.ErrGeometry
	ErrScalarCount     = schema.ErrScalarCount
)

type (
	// ShapeError reports input that cannot be coerced to an array.
	ShapeError = vector.ShapeError
	// MissingFieldError reports a required field absent on add.
	MissingFieldError = schema.MissingFieldError
	// FieldError reports an unknown field or a value of the wrong type.
	FieldError = schema.FieldError
	// UnsupportedTypeError reports an object type without an actor.
	UnsupportedTypeError = actor.UnsupportedTypeError
	// ColormapError reports an unknown colormap name.
	ColormapError = actor.ColormapError
	// GeometryError reports buffers of one object that do not fit together.
	GeometryError = schema.GeometryError
)

// UnknownObjectError indicates an update of an id that was never added.
type UnknownObjectError struct {
	Kind schema.Kind
	ID   int
}

func (e *UnknownObjectError) Error() string {
	return fmt.Sprintf("unknown object %s %d", e.Kind, e.ID)
}

func (e *UnknownObjectError) Unwrap() error { return ErrUnknownObject }
