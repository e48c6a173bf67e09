package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the run store and solve cache schema. The statements run
// unchanged on SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		fingerprint TEXT NOT NULL,
		backend TEXT NOT NULL,
		separable INTEGER NOT NULL,
		params TEXT NOT NULL,
		total_objective DOUBLE PRECISION
	);
	`

	createSubproblemsQuery := `
	CREATE TABLE IF NOT EXISTS run_subproblems (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		branches TEXT NOT NULL,
		routes TEXT NOT NULL,
		status TEXT NOT NULL,
		outcome TEXT NOT NULL,
		objective DOUBLE PRECISION,
		error TEXT NOT NULL,
		runtime_ns BIGINT NOT NULL,
		PRIMARY KEY (run_id, idx)
	);
	`

	createVariablesQuery := `
	CREATE TABLE IF NOT EXISTS run_variables (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		pos INTEGER NOT NULL,
		name TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, idx, pos),
		FOREIGN KEY (run_id, idx) REFERENCES run_subproblems(run_id, idx) ON DELETE CASCADE
	);
	`

	createSolveCacheQuery := `
	CREATE TABLE IF NOT EXISTS solve_cache (
		fingerprint TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		expires_at BIGINT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_runs_created_at
	ON runs(created_at);
	`

	statements := []string{
		createRunsQuery,
		createSubproblemsQuery,
		createVariablesQuery,
		createSolveCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
