package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is matched by *MissingFieldError.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is matched by *FieldError.
	ErrInvalidField = errors.New("invalid field")
	// ErrUnknownKind is returned for object types outside the closed set.
	ErrUnknownKind = errors.New("unsupported object type")
)

// MissingFieldError reports a required field absent on creation.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Kind, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// FieldError reports an unknown field or a value that cannot be coerced to
// the field kind.
//
// The underlying cause (for example a *vector.ShapeError) is reachable
// through errors.Is/As.
type FieldError struct {
	Kind   Kind
	Field  string
	Reason string
	cause  error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s.%s: %s", e.Kind, e.Field, e.Reason)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidField}
	}
	return []error{ErrInvalidField, e.cause}
}
