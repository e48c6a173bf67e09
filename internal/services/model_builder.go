package services

import (
	"fmt"
	"math"
	"strconv"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
)

// subproblem is the scope of one model.
type subproblem struct {
	index    int
	branches []int
	routes   []int
}

// planSubproblems splits a separable scenario into one sub-problem per branch,
// each covering that branch and the route with the same index. Anything else
// is a single global sub-problem.
func planSubproblems(s *domain.Scenario, p domain.Params) (separable bool, subs []subproblem) {
	if domain.IsSeparable(s.Incidence) {
		subs = make([]subproblem, 0, p.Branches)
		for b := 0; b < p.Branches; b++ {
			subs = append(subs, subproblem{index: b, branches: []int{b}, routes: []int{b}})
		}
		return true, subs
	}
	return false, []subproblem{{index: 0, branches: seq(p.Branches), routes: seq(p.Routes)}}
}

// SubproblemCount is the number of models SolveScenario builds for s.
func SubproblemCount(s *domain.Scenario, p domain.Params) int {
	_, subs := planSubproblems(s, p)
	return len(subs)
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// RouteBigM returns, per route, the linking constant for the route-activation
// rows: the most cash the route could ever withdraw, which is the opening cash
// plus every collection of the branches it serves. A positive override must
// dominate that bound.
func RouteBigM(s *domain.Scenario, p domain.Params, branches, routes []int) ([]float64, error) {
	out := make([]float64, len(routes))
	for ri, r := range routes {
		bound := 0.0
		for _, b := range branches {
			if s.Incidence[r][b] == 1 {
				bound += s.CashBound(b, p.Days)
			}
		}
		if p.BigM > 0 {
			if p.BigM < bound {
				return nil, fmt.Errorf("%w: big-M %g is below the withdrawal bound %g of route %d", domain.ErrBuild, p.BigM, bound, r)
			}
			bound = p.BigM
		}
		out[ri] = bound
	}
	return out, nil
}

// BuildModel builds the MILP for the given branches and routes.
func BuildModel(s *domain.Scenario, p domain.Params, branches, routes []int) (*milp.Model, error) {
	if len(branches) == 0 || len(routes) == 0 {
		return nil, fmt.Errorf("%w: empty scope (branches=%d routes=%d)", domain.ErrBuild, len(branches), len(routes))
	}
	for _, r := range routes {
		if r < 0 || r >= p.Routes || r >= len(s.Incidence) || r >= len(s.RouteCost) || r >= len(s.BusinessDays) {
			return nil, fmt.Errorf("%w: route %d outside the loaded tables (routes=%d)", domain.ErrBuild, r, p.Routes)
		}
	}
	for _, b := range branches {
		if b < 0 || b >= p.Branches || b >= len(s.Collection) || b >= len(s.OpeningCash) || b >= len(s.BoxCapacity) {
			return nil, fmt.Errorf("%w: branch %d outside the loaded tables (branches=%d)", domain.ErrBuild, b, p.Branches)
		}
		for _, r := range routes {
			if b >= len(s.Incidence[r]) {
				return nil, fmt.Errorf("%w: route %d has no incidence column for branch %d", domain.ErrBuild, r, b)
			}
		}
	}

	bigM, err := RouteBigM(s, p, branches, routes)
	if err != nil {
		return nil, err
	}

	days := p.Days
	rate := p.DailyInterestRate
	m := milp.New("cash_routing")

	// x[ri][d]
	x := make([][]int, len(routes))
	for ri, r := range routes {
		x[ri] = make([]int, days)
		for d := 0; d < days; d++ {
			x[ri][d] = m.AddBinary(domain.XName(d, r), s.RouteCost[r])
		}
	}

	// e[bi][d]
	e := make([][]int, len(branches))
	for bi, b := range branches {
		e[bi] = make([]int, days)
		for d := 0; d < days; d++ {
			e[bi][d] = m.AddContinuous(domain.EName(b, d), 0, math.Inf(1), 0)
		}
	}

	// t[bi][d][ri]
	t := make([][][]int, len(branches))
	for bi, b := range branches {
		t[bi] = make([][]int, days)
		for d := 0; d < days; d++ {
			t[bi][d] = make([]int, len(routes))
			for ri, r := range routes {
				t[bi][d][ri] = m.AddContinuous(domain.TName(b, d, r), 0, math.Inf(1), 0)
			}
		}
	}

	if rate > 0 {
		for bi, b := range branches {
			m.Offset += rate * s.OpeningCash[b]
			for d := 0; d < days-1; d++ {
				m.AddCost(e[bi][d], rate)
			}
		}
	}

	// Cash balance.
	for bi, b := range branches {
		for d := 0; d < days; d++ {
			terms := []milp.Term{{Var: e[bi][d], Coef: 1}}
			for ri := range routes {
				terms = append(terms, milp.Term{Var: t[bi][d][ri], Coef: 1})
			}
			rhs := s.Collection[b][d]
			if d == 0 {
				rhs += s.OpeningCash[b]
			} else {
				terms = append(terms, milp.Term{Var: e[bi][d-1], Coef: -1})
			}
			m.AddEq(rowName("balance", b, d), terms, rhs)
		}
	}

	// Route activation and non-incidence zeroing.
	for d := 0; d < days; d++ {
		for ri, r := range routes {
			link := make([]milp.Term, 0, len(branches)+1)
			zero := make([]milp.Term, 0, len(branches))
			for bi, b := range branches {
				inc := s.Incidence[r][b]
				link = append(link, milp.Term{Var: t[bi][d][ri], Coef: inc})
				zero = append(zero, milp.Term{Var: t[bi][d][ri], Coef: 1 - inc})
			}
			link = append(link, milp.Term{Var: x[ri][d], Coef: -bigM[ri]})
			m.AddLe(rowName("link", d, r), link, 0)
			m.AddEq(rowName("zero", d, r), zero, 0)
		}
	}

	// Box capacity.
	for bi, b := range branches {
		capacity := s.EffectiveCapacity(b, p.ExtraBoxPercent)
		for d := 0; d < days; d++ {
			m.AddLe(rowName("box", b, d), []milp.Term{{Var: e[bi][d], Coef: 1}}, capacity)
		}
	}

	// Withdrawals are bounded by the cash carried from the previous day.
	for bi, b := range branches {
		for d := 0; d < days; d++ {
			terms := make([]milp.Term, 0, len(routes)+1)
			for ri := range routes {
				terms = append(terms, milp.Term{Var: t[bi][d][ri], Coef: 1})
			}
			if d == 0 {
				m.AddLe(rowName("withdraw", b, d), terms, s.OpeningCash[b])
				continue
			}
			terms = append(terms, milp.Term{Var: e[bi][d-1], Coef: -1})
			m.AddLe(rowName("withdraw", b, d), terms, 0)
		}
	}

	// Business-day calendar.
	for d := 0; d < days; d++ {
		for ri, r := range routes {
			m.AddLe(rowName("calendar", d, r), []milp.Term{{Var: x[ri][d], Coef: 1}}, s.BusinessDays[r][d])
		}
	}

	// Mandatory collection within the last days.
	if len(p.LastDaysCollection) > 0 {
		for _, b := range branches {
			terms := make([]milp.Term, 0, len(routes)*len(p.LastDaysCollection))
			for ri, r := range routes {
				for _, d := range p.LastDaysCollection {
					terms = append(terms, milp.Term{Var: x[ri][d], Coef: s.Incidence[r][b]})
				}
			}
			m.AddGe(rowName("mandatory", b), terms, 1)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuild, err)
	}
	return m, nil
}

func rowName(kind string, idx ...int) string {
	name := kind
	for _, i := range idx {
		name += "_" + strconv.Itoa(i)
	}
	return name
}
