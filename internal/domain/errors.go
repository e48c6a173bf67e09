package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks scenarios rejected before any sub-problem is built.
	ErrInvalidInput = errors.New("invalid input")

	ErrNegativeInterest = fmt.Errorf("%w: daily interest rate cannot be negative", ErrInvalidInput)

	// ErrBuild aborts a run while a sub-problem model is being constructed.
	ErrBuild = errors.New("build sub-problem")

	// ErrSolve is returned with the partial result when a backend fails.
	ErrSolve = errors.New("solve sub-problem")

	// ErrNotEvaluable means a sub-problem finished without an objective value.
	ErrNotEvaluable = errors.New("scenario could not be evaluated")

	ErrNotFound = errors.New("not found")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
