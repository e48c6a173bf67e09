package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
	"cash-routing-service/internal/platform/metrics"
	"cash-routing-service/internal/ports"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// SolveOption tunes SolveScenario.
type SolveOption func(*solveConfig)

type solveConfig struct {
	observer  func(domain.SubproblemResult)
	modelSink func(index int, m *milp.Model) error
}

// WithObserver receives every sub-problem record as soon as it is final.
// Calls never overlap, but in parallel mode they arrive in completion order.
func WithObserver(fn func(domain.SubproblemResult)) SolveOption {
	return func(c *solveConfig) { c.observer = fn }
}

// WithModelSink receives every built model before any solve starts.
func WithModelSink(fn func(index int, m *milp.Model) error) SolveOption {
	return func(c *solveConfig) { c.modelSink = fn }
}

func (c *solveConfig) notify(rec domain.SubproblemResult) {
	if c.observer != nil {
		c.observer(rec)
	}
}

// SolveScenario splits the scenario into sub-problems, builds one model for
// each and solves them with the given backend.
//
// Invalid input and build failures return no result. A backend failure is
// recorded on its sub-problem and the partial result is returned together
// with an error wrapping domain.ErrSolve.
func SolveScenario(
	ctx context.Context,
	s *domain.Scenario,
	p domain.Params,
	solver ports.Solver,
	opts ...SolveOption,
) (*domain.SolveResult, error) {
	if err := domain.Validate(s, p); err != nil {
		return nil, fmt.Errorf("solve scenario: %w", err)
	}
	if solver == nil {
		return nil, errors.New("solve scenario: solver is nil")
	}

	var cfg solveConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	separable, subs := planSubproblems(s, p)
	models := make([]*milp.Model, len(subs))
	for i, sp := range subs {
		m, err := BuildModel(s, p, sp.branches, sp.routes)
		if err != nil {
			return nil, fmt.Errorf("solve scenario: subproblem %d: %w", sp.index, err)
		}
		m.Name = fmt.Sprintf("cash_routing_%d", sp.index)
		if p.Debug {
			glog.Infof("op=solve.build subproblem=%d vars=%d ints=%d rows=%d nnz=%d",
				sp.index, m.NumVars(), m.NumIntegers(), m.NumRows(), m.NumNonzeros())
		}
		if cfg.modelSink != nil {
			if err := cfg.modelSink(sp.index, m); err != nil {
				return nil, fmt.Errorf("solve scenario: export subproblem %d: %w", sp.index, err)
			}
		}
		models[i] = m
	}

	res := &domain.SolveResult{
		Separable:   separable,
		Backend:     solver.Name(),
		Subproblems: make([]domain.SubproblemResult, 0, len(subs)),
	}
	milpOpts := solverOptions(p)

	if p.Parallelism > 1 && len(subs) > 1 {
		return solveParallel(ctx, s, p, solver, subs, models, milpOpts, &cfg, res)
	}

	for i, sp := range subs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("solve scenario: %w", err)
		}
		rec, err := solveSubproblem(ctx, s, p, solver, sp, models[i], milpOpts)
		res.Subproblems = append(res.Subproblems, rec)
		cfg.notify(rec)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// solveParallel runs up to p.Parallelism solves at once. The first failure
// stops sub-problems that have not started yet; running ones finish.
func solveParallel(
	ctx context.Context,
	s *domain.Scenario,
	p domain.Params,
	solver ports.Solver,
	subs []subproblem,
	models []*milp.Model,
	milpOpts []milp.Option,
	cfg *solveConfig,
	res *domain.SolveResult,
) (*domain.SolveResult, error) {
	recs := make([]*domain.SubproblemResult, len(subs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Parallelism)
	for i, sp := range subs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			rec, err := solveSubproblem(ctx, s, p, solver, sp, models[i], milpOpts)

			mu.Lock()
			recs[i] = &rec
			cfg.notify(rec)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()

	for _, rec := range recs {
		if rec != nil {
			res.Subproblems = append(res.Subproblems, *rec)
		}
	}
	if err == nil && len(res.Subproblems) < len(subs) {
		err = fmt.Errorf("solve scenario: %w", context.Cause(ctx))
	}
	return res, err
}

func solveSubproblem(
	ctx context.Context,
	s *domain.Scenario,
	p domain.Params,
	solver ports.Solver,
	sp subproblem,
	m *milp.Model,
	opts []milp.Option,
) (domain.SubproblemResult, error) {
	rec := domain.SubproblemResult{
		Index:    sp.index,
		Branches: sp.branches,
		Routes:   sp.routes,
		Model:    m,
	}

	start := time.Now()
	sol, err := solver.Solve(ctx, m, opts...)
	rec.Runtime = time.Since(start)
	metrics.SubproblemDuration.WithLabelValues(solver.Name()).Observe(rec.Runtime.Seconds())

	if err != nil {
		rec.Status = domain.LabelSolveError + diagnose(s, p, sp)
		rec.Outcome = milp.StatusUndefined
		rec.Error = err.Error()
		metrics.Subproblems.WithLabelValues(solver.Name(), "error").Inc()
		glog.Errorf("op=solve.subproblem subproblem=%d backend=%s err=%v", sp.index, solver.Name(), err)
		return rec, fmt.Errorf("%w %d: %w", domain.ErrSolve, sp.index, err)
	}

	rec.Outcome = sol.Status
	rec.Status = describeStatus(s, p, sp, sol.Status)
	metrics.Subproblems.WithLabelValues(solver.Name(), sol.Status.String()).Inc()

	if sol.Status.HasSolution() {
		obj := sol.Objective
		rec.Objective = &obj
		rec.Variables = make([]domain.Variable, len(m.Vars))
		for j, v := range m.Vars {
			rec.Variables[j] = domain.Variable{Name: v.Name, Value: sol.Value(j)}
		}
	}

	if p.Debug {
		glog.Infof("op=solve.subproblem subproblem=%d status=%q dur=%dms", sp.index, rec.Status, rec.Runtime.Milliseconds())
		for _, v := range rec.Variables {
			glog.Infof("%s = %g", v.Name, v.Value)
		}
	}
	return rec, nil
}

func solverOptions(p domain.Params) []milp.Option {
	opts := []milp.Option{milp.WithOutput(p.Debug)}
	if p.Threads > 0 {
		opts = append(opts, milp.WithThreads(p.Threads))
	}
	if p.TimeLimit > 0 {
		opts = append(opts, milp.WithTimeLimit(p.TimeLimit))
	}
	if p.MIPRelGap > 0 {
		opts = append(opts, milp.WithMIPRelGap(p.MIPRelGap))
	}
	return opts
}
