package milp

import (
	"fmt"
	"time"
)

// Status is the terminal state of a solve.
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusUndefined
	// StatusFeasible means a limit stopped the search with an incumbent in hand.
	StatusFeasible
)

func (s Status) String() string {
	switch s {
	case StatusNotSolved:
		return "NotSolved"
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	case StatusUndefined:
		return "Undefined"
	case StatusFeasible:
		return "Feasible"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// HasSolution reports whether the status carries primal values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

type Solution struct {
	Status    Status
	Objective float64
	// Values holds one entry per model variable when Status.HasSolution().
	Values  []float64
	Nodes   int
	Runtime time.Duration
}

func (s *Solution) IsOptimal() bool {
	return s != nil && s.Status == StatusOptimal
}

// Value returns the value of variable i, or 0 when there is no solution.
func (s *Solution) Value(i int) float64 {
	if s == nil || i < 0 || i >= len(s.Values) {
		return 0
	}
	return s.Values[i]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("milp: unknown status %q", b)
	}
	*s = st
	return nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, bool) {
	for s := StatusNotSolved; s <= StatusFeasible; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return StatusNotSolved, false
}
