package domain

import (
	"time"

	"cash-routing-service/internal/milp"
)

type Variable struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SubproblemResult is the immutable record of one solved sub-problem.
type SubproblemResult struct {
	Index    int   `json:"index"`
	Branches []int `json:"branches"`
	Routes   []int `json:"routes"`

	// Status is the label plus any diagnostic suffixes.
	Status    string        `json:"status"`
	Outcome   milp.Status   `json:"outcome"`
	Objective *float64      `json:"objective,omitempty"`
	Variables []Variable    `json:"variables,omitempty"`
	Error     string        `json:"error,omitempty"`
	Runtime   time.Duration `json:"runtime_ns"`

	// Model is the problem as it was handed to the backend.
	Model *milp.Model `json:"-"`
}

// HasObjective reports whether the sub-problem produced an objective value.
func (s SubproblemResult) HasObjective() bool {
	return s.Objective != nil
}

// SolveResult gathers every sub-problem of one scenario, ordered by index.
type SolveResult struct {
	Separable   bool               `json:"separable"`
	Backend     string             `json:"backend"`
	Subproblems []SubproblemResult `json:"subproblems"`
}

// Statuses returns one status string per sub-problem.
func (r *SolveResult) Statuses() []string {
	out := make([]string, 0, len(r.Subproblems))
	for _, sp := range r.Subproblems {
		out = append(out, sp.Status)
	}
	return out
}

// Variables flattens the solved variables of every sub-problem.
func (r *SolveResult) Variables() []Variable {
	n := 0
	for _, sp := range r.Subproblems {
		n += len(sp.Variables)
	}
	out := make([]Variable, 0, n)
	for _, sp := range r.Subproblems {
		out = append(out, sp.Variables...)
	}
	return out
}

// Values indexes the flattened variables by name.
func (r *SolveResult) Values() map[string]float64 {
	out := make(map[string]float64)
	for _, sp := range r.Subproblems {
		for _, v := range sp.Variables {
			out[v.Name] = v.Value
		}
	}
	return out
}

// TotalObjective sums the objectives. ok is false when any sub-problem has none.
func (r *SolveResult) TotalObjective() (total float64, ok bool) {
	if len(r.Subproblems) == 0 {
		return 0, false
	}
	for _, sp := range r.Subproblems {
		if sp.Objective == nil {
			return 0, false
		}
		total += *sp.Objective
	}
	return total, true
}

// AllOptimal reports whether every sub-problem reached a proven optimum.
func (r *SolveResult) AllOptimal() bool {
	if len(r.Subproblems) == 0 {
		return false
	}
	for _, sp := range r.Subproblems {
		if sp.Outcome != milp.StatusOptimal || sp.Error != "" {
			return false
		}
	}
	return true
}

// EndOfDayCash returns the solved e[branch,day].
func (r *SolveResult) EndOfDayCash(branch, day int) (float64, bool) {
	name := EName(branch, day)
	for _, sp := range r.Subproblems {
		for _, v := range sp.Variables {
			if v.Name == name {
				return v.Value, true
			}
		}
	}
	return 0, false
}
