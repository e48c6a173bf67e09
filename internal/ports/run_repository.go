package ports

import (
	"context"

	"cash-routing-service/internal/domain"
)

// Port: a boundary for persisting solved runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.Run) error
	// Return domain.ErrNotFound when no run has the given id.
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// Return the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error)
}
