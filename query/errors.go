package query

import "fmt"

// ErrUnsupportedValue indicates a selection or ordering argument of a type the
// compiler does not accept.
type ErrUnsupportedValue struct {
	Key   string
	Value any
}

func (e *ErrUnsupportedValue) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("unsupported argument %v (%T)", e.Value, e.Value)
	}
	return fmt.Sprintf("unsupported value %v (%T) for key %q", e.Value, e.Value, e.Key)
}

// ErrIncomparable indicates two metadata values that cannot be ordered
// relative to each other.
type ErrIncomparable struct {
	A, B any
}

func (e *ErrIncomparable) Error() string {
	return fmt.Sprintf("cannot compare %v (%T) with %v (%T)", e.A, e.A, e.B, e.B)
}
