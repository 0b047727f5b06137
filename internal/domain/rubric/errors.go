package rubric

import (
	"errors"
	"fmt"
)

// Sentinel kinds for rubric errors. Typed errors below unwrap to
// ErrValidation so callers can classify with errors.Is and still
// extract the offending key with errors.As.
var (
	ErrValidation        = errors.New("score validation failed")
	ErrInvalidDefinition = errors.New("invalid rubric definition")
)

// MissingRequiredFieldError reports a required criterion with no value.
type MissingRequiredFieldError struct {
	Key string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required criterion %q", e.Key)
}

func (e *MissingRequiredFieldError) Unwrap() error { return ErrValidation }

// OutOfRangeError reports a numeric value outside the criterion bounds.
type OutOfRangeError struct {
	Key   string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("criterion %q value %g out of range [%g, %g]", e.Key, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Unwrap() error { return ErrValidation }

// UnknownCriterionError reports a submitted key absent from the rubric.
type UnknownCriterionError struct {
	Key string
}

func (e *UnknownCriterionError) Error() string {
	return fmt.Sprintf("unknown criterion %q", e.Key)
}

func (e *UnknownCriterionError) Unwrap() error { return ErrValidation }

// InvalidTypeError reports a value that cannot be coerced to the
// criterion's declared type.
type InvalidTypeError struct {
	Key   string
	Value any
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("criterion %q value %v has invalid type %T", e.Key, e.Value, e.Value)
}

func (e *InvalidTypeError) Unwrap() error { return ErrValidation }
