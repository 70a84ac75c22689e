package criteria

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCriteria matches any *InvalidCriteriaError.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrTypeMismatch matches any *TypeMismatchError.
	ErrTypeMismatch = errors.New("type mismatch")
)

// InvalidCriteriaError reports a criteria expression that is not one of the
// recognized forms.
type InvalidCriteriaError struct {
	Criteria any
	// Err is the underlying cause, such as HCL diagnostics from Parse.
	Err error
}

func (e *InvalidCriteriaError) Error() string {
	msg := fmt.Sprintf("value type criteria %s is invalid", repr(e.Criteria))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidCriteriaError) Is(target error) bool {
	return target == ErrInvalidCriteria
}

func (e *InvalidCriteriaError) Unwrap() error {
	return e.Err
}

// TypeMismatchError reports a value that does not conform to a well-formed
// criteria.
type TypeMismatchError struct {
	Value    any
	Expected string
	Actual   string

	msg string
}

func (e *TypeMismatchError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("expected %s instead of %s", e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func mismatch(value any, expected, actual string, format string, args ...any) *TypeMismatchError {
	return &TypeMismatchError{
		Value:    value,
		Expected: expected,
		Actual:   actual,
		msg:      fmt.Sprintf(format, args...),
	}
}

func invalid(expr any, err error) *InvalidCriteriaError {
	return &InvalidCriteriaError{Criteria: expr, Err: err}
}
