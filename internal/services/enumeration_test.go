package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"cash-routing-service/internal/adapters/solvers"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
)

// planCost prices a fixed route schedule. With x fixed, withdrawing all the
// carried cash whenever an incident route runs leaves the least cash in every
// box, so it is the cheapest completion and the only one worth checking
// against the capacity.
func planCost(s *domain.Scenario, p domain.Params, on func(d, r int) bool) (float64, bool) {
	cost := 0.0
	for d := 0; d < p.Days; d++ {
		for r := 0; r < p.Routes; r++ {
			if !on(d, r) {
				continue
			}
			if s.BusinessDays[r][d] < 1 {
				return 0, false
			}
			cost += s.RouteCost[r]
		}
	}

	rate := p.DailyInterestRate
	for b := 0; b < p.Branches; b++ {
		visited := func(d int) bool {
			for r := 0; r < p.Routes; r++ {
				if on(d, r) && s.Incidence[r][b] == 1 {
					return true
				}
			}
			return false
		}

		if len(p.LastDaysCollection) > 0 {
			covered := false
			for _, d := range p.LastDaysCollection {
				covered = covered || visited(d)
			}
			if !covered {
				return 0, false
			}
		}

		capacity := s.EffectiveCapacity(b, p.ExtraBoxPercent)
		carried := s.OpeningCash[b]
		cost += rate * carried
		for d := 0; d < p.Days; d++ {
			e := carried + s.Collection[b][d]
			if visited(d) {
				e -= carried
			}
			if e > capacity+1e-9 {
				return 0, false
			}
			if d < p.Days-1 {
				cost += rate * e
			}
			carried = e
		}
	}
	return cost, true
}

// enumerateOptimum tries every route schedule of the global model.
func enumerateOptimum(s *domain.Scenario, p domain.Params) (float64, bool) {
	n := p.Days * p.Routes
	best := math.Inf(1)
	for mask := 0; mask < 1<<n; mask++ {
		on := func(d, r int) bool { return mask&(1<<(d*p.Routes+r)) != 0 }
		if c, ok := planCost(s, p, on); ok && c < best {
			best = c
		}
	}
	return best, !math.IsInf(best, 1)
}

// randomSharedScenario draws two branches served by two or three routes over
// three days. Route 0 serves both branches, so the model is never split.
func randomSharedScenario(rng *rand.Rand) (*domain.Scenario, domain.Params) {
	routes := 2 + rng.IntN(2)
	s := &domain.Scenario{}
	for r := 0; r < routes; r++ {
		row := []float64{float64(rng.IntN(2)), float64(rng.IntN(2))}
		if r == 0 {
			row = []float64{1, 1}
		} else if row[0] == 0 && row[1] == 0 {
			row[rng.IntN(2)] = 1
		}
		s.Incidence = append(s.Incidence, row)
		s.RouteCost = append(s.RouteCost, float64(10+rng.IntN(51)))

		cal := make([]float64, 3)
		for d := range cal {
			cal[d] = float64(rng.IntN(2))
		}
		s.BusinessDays = append(s.BusinessDays, cal)
	}
	for b := 0; b < 2; b++ {
		s.OpeningCash = append(s.OpeningCash, float64(rng.IntN(11)))
		s.BoxCapacity = append(s.BoxCapacity, float64(10+rng.IntN(31)))
		coll := make([]float64, 3)
		for d := range coll {
			coll[d] = float64(rng.IntN(26))
		}
		s.Collection = append(s.Collection, coll)
	}

	p := domain.Params{Days: 3, Branches: 2, Routes: routes}
	switch rng.IntN(3) {
	case 1:
		p.DailyInterestRate = 0.001
	case 2:
		p.DailyInterestRate = 0.01
	}
	if rng.IntN(3) == 0 {
		p.LastDaysCollection = []int{1, 2}
	}
	return s, p
}

// enumerationMismatch solves one scenario with the pure-Go backend and
// compares the outcome with the enumerated optimum.
func enumerationMismatch(s *domain.Scenario, p domain.Params) error {
	res, err := SolveScenario(context.Background(), s, p, solvers.NewBranchBound())
	if err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}
	if len(res.Subproblems) != 1 {
		return fmt.Errorf("expected one sub-problem, got %d", len(res.Subproblems))
	}
	sp := res.Subproblems[0]

	want, feasible := enumerateOptimum(s, p)
	if !feasible {
		if sp.Outcome != milp.StatusInfeasible {
			return fmt.Errorf("outcome = %s (%q), want infeasible", sp.Outcome, sp.Status)
		}
		return nil
	}
	if sp.Outcome != milp.StatusOptimal || sp.Objective == nil {
		return fmt.Errorf("outcome = %s (%q), want optimal %.6f", sp.Outcome, sp.Status, want)
	}
	if math.Abs(*sp.Objective-want) > 1e-5*(1+math.Abs(want)) {
		return fmt.Errorf("objective = %.6f, want %.6f", *sp.Objective, want)
	}
	return nil
}

func TestBranchBoundMatchesEnumeration(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 60; i++ {
		s, p := randomSharedScenario(rng)
		if err := enumerationMismatch(s, p); err != nil {
			t.Fatalf("scenario %d %+v params %+v: %v", i, *s, p, err)
		}
	}
}

func TestBranchBoundThreeSharedRoutes(t *testing.T) {
	s := &domain.Scenario{
		Incidence:    [][]float64{{1, 1}, {1, 1}, {1, 1}},
		RouteCost:    []float64{33, 32, 60},
		OpeningCash:  []float64{9, 9},
		BoxCapacity:  []float64{23, 39},
		BusinessDays: [][]float64{{1, 0, 0}, {1, 1, 1}, {0, 1, 1}},
		Collection:   [][]float64{{9, 7, 3}, {23, 7, 5}},
	}
	p := domain.Params{Days: 3, Branches: 2, Routes: 3, DailyInterestRate: 0.01}

	if err := enumerationMismatch(s, p); err != nil {
		t.Fatal(err)
	}
}

func TestBranchBoundLongHorizonTerminates(t *testing.T) {
	s := &domain.Scenario{
		Incidence:    [][]float64{{1}},
		RouteCost:    []float64{50},
		OpeningCash:  []float64{7},
		BoxCapacity:  []float64{41},
		BusinessDays: [][]float64{{1, 1, 0, 1, 1, 1}},
		Collection:   [][]float64{{9, 6, 4, 8, 7, 8}},
	}
	p := domain.Params{
		Days: 6, Branches: 1, Routes: 1,
		LastDaysCollection: []int{5, 4},
		DailyInterestRate:  0.001,
		TimeLimit:          2 * time.Second,
	}

	done := make(chan error, 1)
	go func() { done <- enumerationMismatch(s, p) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(30 * time.Second):
		t.Fatalf("solve still running after 30s")
	}
}
