package solvers

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"cash-routing-service/internal/milp"

	"github.com/golang/glog"
)

const (
	defaultIntTol    = 1e-6
	defaultNodeLimit = 200000
)

// BranchBound is a depth-first branch and bound over gonum's simplex. Nodes
// tighten variable bounds instead of adding rows, so every relaxation keeps
// the shape of the root model. It ignores the thread hint.
type BranchBound struct {
	IntTol    float64
	NodeLimit int
}

func NewBranchBound() *BranchBound {
	return &BranchBound{IntTol: defaultIntTol, NodeLimit: defaultNodeLimit}
}

func (s *BranchBound) Name() string { return BackendBranchBound.String() }

type bbNode struct {
	lower []float64
	upper []float64
}

func (n bbNode) with(j int, lower, upper float64) bbNode {
	c := bbNode{lower: slices.Clone(n.lower), upper: slices.Clone(n.upper)}
	c.lower[j], c.upper[j] = lower, upper
	return c
}

func (s *BranchBound) Solve(ctx context.Context, m *milp.Model, opts ...milp.Option) (*milp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("branch and bound: %w", err)
	}

	cfg := milp.NewConfig(opts...)
	start := time.Now()
	var deadline time.Time
	if cfg.TimeLimit > 0 {
		deadline = start.Add(cfg.TimeLimit)
	}
	nodeLimit := s.NodeLimit
	if cfg.NodeLimit > 0 {
		nodeLimit = cfg.NodeLimit
	}
	tol := s.IntTol
	if tol <= 0 {
		tol = defaultIntTol
	}

	root := bbNode{lower: make([]float64, len(m.Vars)), upper: make([]float64, len(m.Vars))}
	for i, v := range m.Vars {
		lo, up := v.Lower, v.Upper
		if v.Type == milp.Integer {
			lo, up = math.Ceil(lo-tol), math.Floor(up+tol)
		}
		if lo > up {
			return &milp.Solution{Status: milp.StatusInfeasible, Runtime: time.Since(start)}, nil
		}
		root.lower[i], root.upper[i] = lo, up
	}

	var (
		incumbent []float64
		best      = math.Inf(1)
		nodes     int
		limited   bool
	)

	stack := []bbNode{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("branch and bound: %w", err)
		}
		if (nodeLimit > 0 && nodes >= nodeLimit) || (!deadline.IsZero() && time.Now().After(deadline)) {
			limited = true
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		rel, err := solveRelaxation(m, nd.lower, nd.upper)
		if err != nil {
			return nil, fmt.Errorf("branch and bound: node %d: %w", nodes, err)
		}

		switch rel.status {
		case milp.StatusInfeasible:
			continue
		case milp.StatusUnbounded:
			// The integer hull of an unbounded relaxation with rational data is
			// unbounded or empty; report it as unbounded like the LP backends do.
			return &milp.Solution{Status: milp.StatusUnbounded, Nodes: nodes, Runtime: time.Since(start)}, nil
		}

		if rel.objective >= best-pruneTol(best, cfg.MIPRelGap) {
			continue
		}

		j := mostFractional(m, rel.values, tol)
		if j < 0 {
			incumbent = rel.values
			best = rel.objective
			if cfg.Output {
				glog.Infof("op=bnb.incumbent model=%s node=%d obj=%g", m.Name, nodes, best)
			}
			continue
		}

		v := rel.values[j]
		down := nd.with(j, nd.lower[j], math.Floor(v))
		up := nd.with(j, math.Ceil(v), nd.upper[j])
		// The side nearer to v is popped first.
		if v-math.Floor(v) > 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	sol := &milp.Solution{Nodes: nodes, Runtime: time.Since(start)}
	switch {
	case incumbent != nil:
		for i, v := range m.Vars {
			if v.Type == milp.Integer {
				incumbent[i] = math.Round(incumbent[i])
			}
		}
		sol.Values = incumbent
		sol.Objective = m.Evaluate(incumbent)
		sol.Status = milp.StatusOptimal
		if limited {
			sol.Status = milp.StatusFeasible
		}
	case limited:
		sol.Status = milp.StatusNotSolved
	default:
		sol.Status = milp.StatusInfeasible
	}

	if glog.V(1) {
		glog.Infof("op=bnb.solve model=%s status=%s nodes=%d dur=%dms", m.Name, sol.Status, nodes, sol.Runtime.Milliseconds())
	}
	return sol, nil
}

func pruneTol(best, relGap float64) float64 {
	if math.IsInf(best, 1) {
		return 0
	}
	return math.Max(1e-9, relGap*math.Abs(best))
}

// mostFractional returns the integer variable farthest from integrality, or -1.
func mostFractional(m *milp.Model, values []float64, tol float64) int {
	j, worst := -1, tol
	for i, v := range m.Vars {
		if v.Type != milp.Integer {
			continue
		}
		f := values[i] - math.Floor(values[i])
		if d := math.Min(f, 1-f); d > worst {
			j, worst = i, d
		}
	}
	return j
}
