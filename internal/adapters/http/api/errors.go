package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Wrap annotates err with the operation that produced it.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind produces an error of the given sentinel kind for an operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind annotates err with both an operation and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
