package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/milp"
	"cash-routing-service/internal/platform/db"
	"cash-routing-service/internal/platform/obs"
)

// SQL-backed implementation of the RunRepository port. Driver selects the
// placeholder style and is one of db.DriverPostgres or db.DriverSQLite.
type SQLRunRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLRunRepository(conn *sql.DB, driver string) *SQLRunRepository {
	return &SQLRunRepository{DB: conn, Driver: driver}
}

// Store a run with its sub-problems and variables in one transaction.
func (s *SQLRunRepository) SaveRun(ctx context.Context, run *domain.Run) (err error) {
	defer obs.Time(ctx, "runs.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("run repository: DB is nil")
	}
	if run == nil || run.ID == "" {
		return errors.New("save run: run id must not be empty")
	}
	if run.Result == nil {
		return fmt.Errorf("save run %s: result is nil", run.ID)
	}

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("save run %s: encode params: %w", run.ID, err)
	}
	var total sql.NullFloat64
	if v, ok := run.Result.TotalObjective(); ok {
		total = sql.NullFloat64{Float64: v, Valid: true}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run %s: db begin: %w", run.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.rebind(`
	INSERT INTO runs (id, created_at, fingerprint, backend, separable, params, total_objective)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`), run.ID, run.CreatedAt.UnixNano(), run.Fingerprint, run.Backend, boolToInt(run.Result.Separable), string(params), total)
	if err != nil {
		return fmt.Errorf("save run %s: insert runs: %w", run.ID, err)
	}

	spStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO run_subproblems (run_id, idx, branches, routes, status, outcome, objective, error, runtime_ns)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`))
	if err != nil {
		return fmt.Errorf("save run %s: prepare run_subproblems: %w", run.ID, err)
	}
	defer spStmt.Close()

	varStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO run_variables (run_id, idx, pos, name, value)
	VALUES ($1, $2, $3, $4, $5);
	`))
	if err != nil {
		return fmt.Errorf("save run %s: prepare run_variables: %w", run.ID, err)
	}
	defer varStmt.Close()

	for _, sp := range run.Result.Subproblems {
		branches, _ := json.Marshal(sp.Branches)
		routes, _ := json.Marshal(sp.Routes)
		var obj sql.NullFloat64
		if sp.Objective != nil {
			obj = sql.NullFloat64{Float64: *sp.Objective, Valid: true}
		}

		if _, err := spStmt.ExecContext(ctx, run.ID, sp.Index, string(branches), string(routes),
			sp.Status, sp.Outcome.String(), obj, sp.Error, int64(sp.Runtime)); err != nil {
			return fmt.Errorf("save run %s: insert subproblem %d: %w", run.ID, sp.Index, err)
		}
		for pos, v := range sp.Variables {
			if _, err := varStmt.ExecContext(ctx, run.ID, sp.Index, pos, v.Name, v.Value); err != nil {
				return fmt.Errorf("save run %s: insert variable %q: %w", run.ID, v.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: commit: %w", run.ID, err)
	}
	return nil
}

// Return one run with its sub-problems and variables.
func (s *SQLRunRepository) GetRun(ctx context.Context, id string) (_ *domain.Run, err error) {
	defer obs.Time(ctx, "runs.GetRun")(&err)

	if s.DB == nil {
		return nil, errors.New("run repository: DB is nil")
	}

	var (
		run       domain.Run
		createdAt int64
		separable int
		params    string
		total     sql.NullFloat64
	)
	err = s.DB.QueryRowContext(ctx, s.rebind(`
	SELECT id, created_at, fingerprint, backend, separable, params, total_objective
	FROM runs
	WHERE id = $1;
	`), id).Scan(&run.ID, &createdAt, &run.Fingerprint, &run.Backend, &separable, &params, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: query runs table: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("get run %s: decode params: %w", id, err)
	}
	run.Result = &domain.SolveResult{Separable: separable != 0, Backend: run.Backend}

	subs, err := s.loadSubproblems(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Result.Subproblems = subs
	return &run, nil
}

func (s *SQLRunRepository) loadSubproblems(ctx context.Context, id string) ([]domain.SubproblemResult, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(`
	SELECT idx, branches, routes, status, outcome, objective, error, runtime_ns
	FROM run_subproblems
	WHERE run_id = $1
	ORDER BY idx;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: query run_subproblems table: %w", id, err)
	}
	defer rows.Close()

	subs := []domain.SubproblemResult{}
	pos := map[int]int{}
	for rows.Next() {
		var (
			sp               domain.SubproblemResult
			branches, routes string
			outcome          string
			obj              sql.NullFloat64
			runtime          int64
		)
		if err := rows.Scan(&sp.Index, &branches, &routes, &sp.Status, &outcome, &obj, &sp.Error, &runtime); err != nil {
			return nil, fmt.Errorf("get run %s: scan subproblem: %w", id, err)
		}
		if err := json.Unmarshal([]byte(branches), &sp.Branches); err != nil {
			return nil, fmt.Errorf("get run %s: decode branches: %w", id, err)
		}
		if err := json.Unmarshal([]byte(routes), &sp.Routes); err != nil {
			return nil, fmt.Errorf("get run %s: decode routes: %w", id, err)
		}
		sp.Outcome, _ = milp.ParseStatus(outcome)
		if obj.Valid {
			v := obj.Float64
			sp.Objective = &v
		}
		sp.Runtime = time.Duration(runtime)
		pos[sp.Index] = len(subs)
		subs = append(subs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run %s: row iteration: %w", id, err)
	}

	vrows, err := s.DB.QueryContext(ctx, s.rebind(`
	SELECT idx, name, value
	FROM run_variables
	WHERE run_id = $1
	ORDER BY idx, pos;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: query run_variables table: %w", id, err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var idx int
		var v domain.Variable
		if err := vrows.Scan(&idx, &v.Name, &v.Value); err != nil {
			return nil, fmt.Errorf("get run %s: scan variable: %w", id, err)
		}
		if i, ok := pos[idx]; ok {
			subs[i].Variables = append(subs[i].Variables, v)
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, fmt.Errorf("get run %s: variable iteration: %w", id, err)
	}
	return subs, nil
}

// Return the most recent runs first.
func (s *SQLRunRepository) ListRuns(ctx context.Context, limit int) (_ []domain.RunInfo, err error) {
	defer obs.Time(ctx, "runs.ListRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("run repository: DB is nil")
	}
	if limit <= 0 {
		return nil, errors.New("list runs: limit must be positive")
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(`
	SELECT r.id, r.created_at, r.fingerprint, r.backend, r.separable, r.total_objective,
		(SELECT COUNT(*) FROM run_subproblems sp WHERE sp.run_id = r.id)
	FROM runs r
	ORDER BY r.created_at DESC, r.id
	LIMIT $1;
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query runs table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RunInfo, 0, limit)
	for rows.Next() {
		var (
			info      domain.RunInfo
			createdAt int64
			separable int
			total     sql.NullFloat64
		)
		if err := rows.Scan(&info.ID, &createdAt, &info.Fingerprint, &info.Backend, &separable, &total, &info.Subproblems); err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		info.CreatedAt = time.Unix(0, createdAt).UTC()
		info.Separable = separable != 0
		if total.Valid {
			v := total.Float64
			info.TotalObjective = &v
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}
	return out, nil
}

func (s *SQLRunRepository) rebind(q string) string {
	return db.Rebind(s.Driver, q)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
