package ports

import (
	"context"

	"cash-routing-service/internal/milp"
)

// Contract for a MILP backend.
type Solver interface {
	// Name identifies the backend in results and logs.
	Name() string
	// Solve optimizes the model. Infeasible or unbounded models are reported
	// through the solution status; an error means the backend itself failed.
	Solve(ctx context.Context, m *milp.Model, opts ...milp.Option) (*milp.Solution, error)
}
