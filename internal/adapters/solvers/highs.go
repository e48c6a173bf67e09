//go:build cgo && (linux || darwin) && (amd64 || arm64)

package solvers

import (
	"context"
	"fmt"
	"time"

	"cash-routing-service/internal/milp"

	"github.com/bartolsthoorn/gohighs/highs"
	"github.com/golang/glog"
)

const highsAvailable = true

// HiGHS solves models with the embedded HiGHS branch-and-cut solver.
type HiGHS struct{}

func NewHiGHS() *HiGHS { return &HiGHS{} }

func (s *HiGHS) Name() string { return BackendHiGHS.String() }

func (s *HiGHS) Solve(ctx context.Context, m *milp.Model, opts ...milp.Option) (*milp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("highs: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("highs: %w", err)
	}

	cfg := milp.NewConfig(opts...)
	hopts := []highs.SolveOption{highs.WithOutput(cfg.Output)}
	if cfg.Threads > 0 {
		hopts = append(hopts, highs.WithThreads(cfg.Threads))
	}
	if cfg.TimeLimit > 0 {
		hopts = append(hopts, highs.WithTimeLimit(cfg.TimeLimit.Seconds()))
	}
	if cfg.MIPRelGap > 0 {
		hopts = append(hopts, highs.WithMIPRelGap(cfg.MIPRelGap))
	}
	if cfg.NodeLimit > 0 {
		hopts = append(hopts, highs.WithIntOption("mip_max_nodes", cfg.NodeLimit))
	}

	start := time.Now()
	hs, err := toHighs(m).Solve(hopts...)
	if err != nil {
		return nil, fmt.Errorf("highs: solve model %q: %w", m.Name, err)
	}

	sol := &milp.Solution{Status: fromHighsStatus(hs.Status), Runtime: time.Since(start)}
	if hs.HasSolution() && len(hs.ColValues) == len(m.Vars) {
		sol.Values = hs.ColValues
		sol.Objective = hs.Objective
		if sol.Status == milp.StatusNotSolved {
			sol.Status = milp.StatusFeasible
		}
	} else if sol.Status.HasSolution() {
		sol.Status = milp.StatusUndefined
	}

	if glog.V(1) {
		glog.Infof("op=highs.solve model=%s status=%s highs_status=%s dur=%dms", m.Name, sol.Status, hs.Status, sol.Runtime.Milliseconds())
	}
	return sol, nil
}

func toHighs(m *milp.Model) *highs.Model {
	hm := &highs.Model{
		Offset:   m.Offset,
		ColCosts: make([]float64, len(m.Vars)),
		ColLower: make([]float64, len(m.Vars)),
		ColUpper: make([]float64, len(m.Vars)),
		VarTypes: make([]highs.VariableType, len(m.Vars)),
		RowLower: make([]float64, len(m.Rows)),
		RowUpper: make([]float64, len(m.Rows)),
	}
	for i, v := range m.Vars {
		hm.ColCosts[i] = v.Cost
		hm.ColLower[i] = v.Lower
		hm.ColUpper[i] = v.Upper
		if v.Type == milp.Integer {
			hm.VarTypes[i] = highs.Integer
		}
	}
	hm.ConstMatrix = make([]highs.Nonzero, 0, m.NumNonzeros())
	for i, r := range m.Rows {
		hm.RowLower[i] = r.Lower
		hm.RowUpper[i] = r.Upper
		for _, t := range r.Terms {
			hm.ConstMatrix = append(hm.ConstMatrix, highs.Nonzero{Row: i, Col: t.Var, Val: t.Coef})
		}
	}
	return hm
}

func fromHighsStatus(s highs.ModelStatus) milp.Status {
	switch s {
	case highs.ModelStatusOptimal, highs.ModelStatusModelEmpty:
		return milp.StatusOptimal
	case highs.ModelStatusInfeasible, highs.ModelStatusUnboundedOrInfeasible:
		return milp.StatusInfeasible
	case highs.ModelStatusUnbounded:
		return milp.StatusUnbounded
	case highs.ModelStatusTimeLimit, highs.ModelStatusIterationLimit,
		highs.ModelStatusObjectiveBound, highs.ModelStatusObjectiveTarget, highs.ModelStatusNotSet:
		return milp.StatusNotSolved
	default:
		return milp.StatusUndefined
	}
}
