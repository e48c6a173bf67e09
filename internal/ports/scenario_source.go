package ports

import (
	"context"

	"cash-routing-service/internal/domain"
)

// Source of scenario tables, such as a directory of CSV files.
type ScenarioSource interface {
	LoadScenario(ctx context.Context) (*domain.Scenario, error)
}
