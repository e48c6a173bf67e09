package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/ports"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]*domain.SolveResult
	puts int
}

func (c *memCache) GetResult(_ context.Context, fp string) (*domain.SolveResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[fp]
	return r, ok, nil
}

func (c *memCache) PutResult(_ context.Context, fp string, res *domain.SolveResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string]*domain.SolveResult{}
	}
	c.data[fp] = res
	c.puts++
	return nil
}

type memRuns struct {
	runs []*domain.Run
}

func (r *memRuns) SaveRun(_ context.Context, run *domain.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *memRuns) GetRun(_ context.Context, id string) (*domain.Run, error) {
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRuns) ListRuns(_ context.Context, limit int) ([]domain.RunInfo, error) {
	out := []domain.RunInfo{}
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, domain.RunInfo{ID: r.runs[i].ID})
	}
	return out, nil
}

func TestPlannerSolveCachesOptimalResults(t *testing.T) {
	s, p := diagonal(2)
	solver := newCountingSolver()
	cache := &memCache{}
	runs := &memRuns{}
	pl := &Planner{
		Solvers: func(string) ports.Solver { return solver },
		Cache:   cache,
		Runs:    runs,
	}

	first, err := pl.Solve(context.Background(), s, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" || first.Fingerprint == "" || first.Backend != "counting" {
		t.Fatalf("run = %+v", first)
	}
	if cache.puts != 1 || solver.Calls() != 2 {
		t.Fatalf("puts = %d, calls = %d", cache.puts, solver.Calls())
	}

	notified := 0
	second, err := pl.Solve(context.Background(), s, p, WithObserver(func(domain.SubproblemResult) { notified++ }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solver.Calls() != 2 {
		t.Fatalf("cache hit must not solve again, calls = %d", solver.Calls())
	}
	if notified != 2 {
		t.Fatalf("observer saw %d records, want 2", notified)
	}
	if second.ID == first.ID || second.Fingerprint != first.Fingerprint {
		t.Fatalf("second run = %+v", second)
	}
	if len(runs.runs) != 2 {
		t.Fatalf("saved %d runs, want 2", len(runs.runs))
	}

	got, err := pl.GetRun(context.Background(), first.ID)
	if err != nil || got != first {
		t.Fatalf("GetRun = %v, %v", got, err)
	}
}

func TestPlannerSkipsCacheForNonOptimal(t *testing.T) {
	s, p := diagonal(2)
	s.BoxCapacity[1] = 0
	cache := &memCache{}
	pl := &Planner{Solvers: func(string) ports.Solver { return newCountingSolver() }, Cache: cache}

	run, err := pl.Solve(context.Background(), s, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Result.AllOptimal() || cache.puts != 0 {
		t.Fatalf("non-optimal result must not be cached")
	}
}

func TestPlannerBackendFailure(t *testing.T) {
	s, p := diagonal(2)
	solver := newCountingSolver()
	solver.failOn = "cash_routing_0"
	runs := &memRuns{}
	pl := &Planner{Solvers: func(string) ports.Solver { return solver }, Runs: runs}

	run, err := pl.Solve(context.Background(), s, p)
	if !errors.Is(err, domain.ErrSolve) {
		t.Fatalf("expected ErrSolve, got %v", err)
	}
	if run == nil || len(run.Result.Subproblems) != 1 {
		t.Fatalf("expected the partial run, got %+v", run)
	}
	if len(runs.runs) != 0 {
		t.Fatalf("failed runs must not be persisted")
	}
}

func TestPlannerWithoutStore(t *testing.T) {
	pl := &Planner{}

	if _, err := pl.GetRun(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	runs, err := pl.ListRuns(context.Background(), 10)
	if err != nil || len(runs) != 0 {
		t.Fatalf("ListRuns = %v, %v", runs, err)
	}
}
