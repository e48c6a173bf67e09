package ports

import (
	"context"

	"cash-routing-service/internal/domain"
)

// Cache of solved results keyed by scenario fingerprint.
type ResultCache interface {
	// Return ok=false on a miss.
	GetResult(ctx context.Context, fingerprint string) (_ *domain.SolveResult, ok bool, err error)
	PutResult(ctx context.Context, fingerprint string, res *domain.SolveResult) error
}
