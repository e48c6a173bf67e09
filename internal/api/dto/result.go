package dto

import (
	"time"

	"cash-routing-service/internal/domain"
)

type SubproblemResponse struct {
	Index     int               `json:"index"`
	Branches  []int             `json:"branches"`
	Routes    []int             `json:"routes"`
	Status    string            `json:"status"`
	Outcome   string            `json:"outcome"`
	Objective *float64          `json:"objective,omitempty"`
	Error     string            `json:"error,omitempty"`
	RuntimeMS int64             `json:"runtime_ms"`
	Variables []domain.Variable `json:"variables"`
}

type RunResponse struct {
	ID             string               `json:"id"`
	CreatedAt      time.Time            `json:"created_at"`
	Fingerprint    string               `json:"fingerprint"`
	Backend        string               `json:"backend"`
	Separable      bool                 `json:"separable"`
	Statuses       []string             `json:"statuses"`
	TotalObjective *float64             `json:"total_objective,omitempty"`
	Subproblems    []SubproblemResponse `json:"subproblems"`
	Summary        *domain.PlanSummary  `json:"summary,omitempty"`
	// Error is set on a partial run whose backend failed. Such runs are not stored.
	Error string `json:"error,omitempty"`
}

type RunInfoResponse struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Fingerprint    string    `json:"fingerprint"`
	Backend        string    `json:"backend"`
	Separable      bool      `json:"separable"`
	Subproblems    int       `json:"subproblems"`
	TotalObjective *float64  `json:"total_objective,omitempty"`
}

type ListRunsResponse struct {
	Runs []RunInfoResponse `json:"runs"`
}

// StreamMessage is one websocket frame of /solve/stream.
type StreamMessage struct {
	Type       string              `json:"type"`
	Subproblem *SubproblemResponse `json:"subproblem,omitempty"`
	Run        *RunResponse        `json:"run,omitempty"`
	Error      string              `json:"error,omitempty"`
}

const (
	StreamSubproblem = "subproblem"
	StreamDone       = "done"
	StreamError      = "error"
)

func NewSubproblemResponse(sp domain.SubproblemResult) SubproblemResponse {
	vars := sp.Variables
	if vars == nil {
		vars = []domain.Variable{}
	}
	return SubproblemResponse{
		Index:     sp.Index,
		Branches:  sp.Branches,
		Routes:    sp.Routes,
		Status:    sp.Status,
		Outcome:   sp.Outcome.String(),
		Objective: sp.Objective,
		Error:     sp.Error,
		RuntimeMS: sp.Runtime.Milliseconds(),
		Variables: vars,
	}
}

func NewRunResponse(run *domain.Run, summary *domain.PlanSummary) RunResponse {
	res := RunResponse{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		Fingerprint: run.Fingerprint,
		Backend:     run.Backend,
		Statuses:    []string{},
		Subproblems: []SubproblemResponse{},
		Summary:     summary,
	}
	if run.Result == nil {
		return res
	}
	res.Separable = run.Result.Separable
	res.Statuses = run.Result.Statuses()
	if total, ok := run.Result.TotalObjective(); ok {
		res.TotalObjective = &total
	}
	for _, sp := range run.Result.Subproblems {
		res.Subproblems = append(res.Subproblems, NewSubproblemResponse(sp))
	}
	return res
}

// NewFailedRunResponse reports the sub-problems of a run cut short by a
// backend failure. The run was never stored, so it carries no id.
func NewFailedRunResponse(run *domain.Run, err error) RunResponse {
	res := NewRunResponse(run, nil)
	res.ID = ""
	res.Error = err.Error()
	return res
}

func NewRunInfoResponse(info domain.RunInfo) RunInfoResponse {
	return RunInfoResponse{
		ID:             info.ID,
		CreatedAt:      info.CreatedAt,
		Fingerprint:    info.Fingerprint,
		Backend:        info.Backend,
		Separable:      info.Separable,
		Subproblems:    info.Subproblems,
		TotalObjective: info.TotalObjective,
	}
}
