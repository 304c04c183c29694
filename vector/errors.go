package vector

import (
	"errors"
	"fmt"
)

// ErrShape is matched by every *ShapeError via errors.Is.
var ErrShape = errors.New("malformed numeric input")

// ShapeError reports numeric input that cannot be coerced into a rectangular
// array of numbers.
type ShapeError struct {
	// Row is the offending row, or -1 when the problem is not row-specific.
	Row    int
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("vector: %s: %s", ErrShape, e.Reason)
	}
	return fmt.Sprintf("vector: %s: row %d: %s", ErrShape, e.Row, e.Reason)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

func shapeErr(row int, format string, args ...any) error {
	return &ShapeError{Row: row, Reason: fmt.Sprintf(format, args...)}
}
