package metagrid

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned when an abstract operation is invoked on a
// base or incomplete index type. It is distinguishable from runtime logic
// errors via errors.Is.
var ErrNotImplemented = errors.New("not implemented")

func notImplemented(receiver any, op string) error {
	return fmt.Errorf("%w: %T.%s", ErrNotImplemented, receiver, op)
}

// ErrOutOfRange indicates a single-element access outside [0, Len).
type ErrOutOfRange struct {
	Position int
	Len      int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("position %d out of range [0, %d)", e.Position, e.Len)
}

// ErrMismatch indicates that parts of a collection disagree on a derived
// property during an aggregating computation, for example rows of different
// widths while stacking a matrix.
type ErrMismatch struct {
	Property string
	Want     any
	Got      any
	Detail   string
}

func (e *ErrMismatch) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s mismatch: want %v, got %v", e.Property, e.Want, e.Got)
	}
	return fmt.Sprintf("%s mismatch: want %v, got %v (%s)", e.Property, e.Want, e.Got, e.Detail)
}
