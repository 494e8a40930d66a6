package comms

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned (wrapped in a *ParameterError) when an
// encoder argument is out of range. No buffer is produced in that case.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterError describes which argument was rejected and its allowed range.
type ParameterError struct {
	Name  string
	Value int
	Min   int
	Max   int
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be between %d and %d", e.Name, e.Value, e.Min, e.Max)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
