package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cash-routing-service/internal/adapters/solvers"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/platform/metrics"
	"cash-routing-service/internal/platform/obs"
	"cash-routing-service/internal/ports"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

// Planner solves scenarios on behalf of the HTTP service and the CLI, with an
// optional result cache and run store in front of SolveScenario.
type Planner struct {
	// Solvers maps a backend name to a solver. Defaults to solvers.Select.
	Solvers func(name string) ports.Solver
	Cache   ports.ResultCache
	Runs    ports.RunRepository
}

func NewPlanner(cache ports.ResultCache, runs ports.RunRepository) *Planner {
	return &Planner{Solvers: solvers.Select, Cache: cache, Runs: runs}
}

func (pl *Planner) solver(name string) ports.Solver {
	if pl.Solvers == nil {
		return solvers.Select(name)
	}
	return pl.Solvers(name)
}

// Solve runs one scenario and persists it when a run store is configured.
// Only fully optimal results are cached. On a backend failure the partial run
// is returned with the error and is not persisted.
func (pl *Planner) Solve(ctx context.Context, s *domain.Scenario, p domain.Params, opts ...SolveOption) (run *domain.Run, err error) {
	defer obs.Time(ctx, "planner.Solve")(&err)

	solver := pl.solver(p.Backend)
	fp := domain.Fingerprint(s, p, solver.Name())

	run = &domain.Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Fingerprint: fp,
		Backend:     solver.Name(),
		Params:      p,
	}

	if pl.Cache != nil {
		cached, ok, cerr := pl.Cache.GetResult(ctx, fp)
		switch {
		case cerr != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			glog.Warningf("op=planner.cache.get fingerprint=%s err=%v", fp, cerr)
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			run.Result = cached
			var cfg solveConfig
			for _, opt := range opts {
				if opt != nil {
					opt(&cfg)
				}
			}
			for _, rec := range cached.Subproblems {
				cfg.notify(rec)
			}
			return run, pl.save(ctx, run)
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	res, err := SolveScenario(ctx, s, p, solver, opts...)
	run.Result = res
	if err != nil {
		if res == nil {
			return nil, fmt.Errorf("planner solve: %w", err)
		}
		return run, fmt.Errorf("planner solve: %w", err)
	}

	if pl.Cache != nil && res.AllOptimal() {
		if perr := pl.Cache.PutResult(ctx, fp, res); perr != nil {
			glog.Warningf("op=planner.cache.put fingerprint=%s err=%v", fp, perr)
		}
	}
	return run, pl.save(ctx, run)
}

func (pl *Planner) save(ctx context.Context, run *domain.Run) error {
	if pl.Runs == nil {
		return nil
	}
	if err := pl.Runs.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("planner save run %s: %w", run.ID, err)
	}
	return nil
}

// Gain computes the gain report with the backend named in p.
func (pl *Planner) Gain(ctx context.Context, s *domain.Scenario, p domain.Params) (rep *domain.GainReport, err error) {
	defer obs.Time(ctx, "planner.Gain")(&err)
	return ComputeGain(ctx, s, p, pl.solver(p.Backend))
}

func (pl *Planner) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	if pl.Runs == nil {
		return nil, fmt.Errorf("get run %s: %w", id, domain.ErrNotFound)
	}
	return pl.Runs.GetRun(ctx, id)
}

func (pl *Planner) ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error) {
	if pl.Runs == nil {
		return []domain.RunInfo{}, nil
	}
	if limit <= 0 {
		return nil, errors.New("list runs: limit must be positive")
	}
	return pl.Runs.ListRuns(ctx, limit)
}
