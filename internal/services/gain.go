package services

import (
	"context"
	"fmt"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/ports"
)

// ComputeGain measures how much pricing idle cash changes the plan. It solves
// the scenario at p.DailyInterestRate and at rate zero, then compares the
// rated objective against the zero-rate plan priced at the same rate.
func ComputeGain(ctx context.Context, s *domain.Scenario, p domain.Params, solver ports.Solver) (*domain.GainReport, error) {
	rated, err := SolveScenario(ctx, s, p, solver)
	if err != nil {
		return nil, fmt.Errorf("compute gain: %w", err)
	}
	total, ok := rated.TotalObjective()
	if !ok {
		return nil, fmt.Errorf("compute gain: rate %g: %w", p.DailyInterestRate, domain.ErrNotEvaluable)
	}

	zero := rated
	if p.DailyInterestRate > 0 {
		pz := p
		pz.DailyInterestRate = 0
		zero, err = SolveScenario(ctx, s, pz, solver)
		if err != nil {
			return nil, fmt.Errorf("compute gain: zero rate: %w", err)
		}
	}
	logistic, ok := zero.TotalObjective()
	if !ok {
		return nil, fmt.Errorf("compute gain: zero rate: %w", domain.ErrNotEvaluable)
	}

	base := FinancialBase(s, p, zero)
	rate := p.DailyInterestRate
	report := &domain.GainReport{
		DailyRate:      rate,
		TotalWithRate:  total,
		LogisticCost:   logistic,
		FinancialBase:  base,
		Statuses:       rated.Statuses(),
		StatusesAtZero: zero.Statuses(),
	}
	if den := logistic + base*rate; den != 0 {
		report.Gain = (den - total) / den
	}
	return report, nil
}

// FinancialBase is the opening cash plus every end-of-day balance except the
// last day's, summed over branches.
func FinancialBase(s *domain.Scenario, p domain.Params, res *domain.SolveResult) float64 {
	values := res.Values()
	total := 0.0
	for b := 0; b < p.Branches; b++ {
		total += s.OpeningCash[b]
		for d := 0; d < p.Days-1; d++ {
			total += values[domain.EName(b, d)]
		}
	}
	return total
}
