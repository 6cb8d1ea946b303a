package sde

import (
	"errors"
	"fmt"
)

// Domain errors for stochastic integration.
var (
	// ErrNonFinite indicates the solver produced a NaN or Inf component.
	ErrNonFinite = errors.New("sde: non-finite state")

	// ErrDimensionMismatch indicates the initial state does not match the system.
	ErrDimensionMismatch = errors.New("sde: state dimension does not match system")

	// ErrEmptyGrid indicates an evaluation grid with fewer than one point.
	ErrEmptyGrid = errors.New("sde: evaluation grid is empty")
)

// NumericalError wraps an integration failure with the step it occurred at.
type NumericalError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("step %d (t=%.2f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *NumericalError) Unwrap() error {
	return e.Wrapped
}
