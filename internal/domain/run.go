package domain

import "time"

// Run is a persisted solve.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Fingerprint string
	Backend     string
	Params      Params
	Result      *SolveResult
}

// RunInfo is the listing view of a Run.
type RunInfo struct {
	ID             string
	CreatedAt      time.Time
	Fingerprint    string
	Backend        string
	Separable      bool
	Subproblems    int
	TotalObjective *float64
}
