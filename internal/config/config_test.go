package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cash-routing-service/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func TestGet(t *testing.T) {
	t.Setenv("CASHPLAN_TEST_KEY", "  value ")
	if got := Get("CASHPLAN_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("Get() = %q, want value", got)
	}
	t.Setenv("CASHPLAN_TEST_KEY", "   ")
	if got := Get("CASHPLAN_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("Get() = %q, want fallback", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "REDIS_URL", "CACHE_TTL",
		"SOLVER", "SOLVER_THREADS", "SOLVE_PARALLELISM", "SOLVE_TIME_LIMIT", "SOLVE_RATE_LIMIT", "SOLVE_BURST"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Config{
		Port:           "8080",
		DBDriver:       "sqlite",
		DBPath:         "data/app.db",
		CacheTTL:       24 * time.Hour,
		Parallelism:    1,
		SolveRateLimit: 2,
		SolveBurst:     4,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.DSN() != "data/app.db" {
		t.Fatalf("DSN() = %q", cfg.DSN())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/cash")
	t.Setenv("SOLVE_TIME_LIMIT", "90s")
	t.Setenv("SOLVER_THREADS", "4")
	t.Setenv("SOLVE_PARALLELISM", "3")
	t.Setenv("SOLVER", "bnb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "pgx" || cfg.DSN() != "postgres://u:p@localhost/cash" {
		t.Fatalf("driver = %q dsn = %q", cfg.DBDriver, cfg.DSN())
	}
	if cfg.TimeLimit != 90*time.Second || cfg.Threads != 4 || cfg.Parallelism != 3 || cfg.Solver != "bnb" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SOLVER_THREADS", "many")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a non-numeric thread count")
	}
	t.Setenv("SOLVER_THREADS", "")
	t.Setenv("CACHE_TTL", "-1h")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a negative ttl")
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	body := `
days: 3
branches: 2
routes: 2
last_days_collection: [1, 2]
extra_box_percent: 0.1
annual_interest_percent: 45
solver: bnb
time_limit: 2m
parallelism: 2
mileage_fee:
  fixed: 1500
  threshold: 1000000
  coefficient: 0.0004
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}

	pf, err := LoadParams(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf.Days != 3 || pf.Branches != 2 || pf.Routes != 2 || pf.Backend != "bnb" || pf.Parallelism != 2 {
		t.Fatalf("params = %+v", pf.Params)
	}
	if diff := cmp.Diff([]int{1, 2}, pf.LastDaysCollection); diff != "" {
		t.Fatalf("last days mismatch (-want +got):\n%s", diff)
	}
	if pf.TimeLimit != 2*time.Minute {
		t.Fatalf("time limit = %v", pf.TimeLimit)
	}
	if want := domain.DailyRateFromAnnual(45); math.Abs(pf.DailyInterestRate-want) > 1e-15 {
		t.Fatalf("daily rate = %v, want %v", pf.DailyInterestRate, want)
	}
	if pf.MileageFee.Fixed != 1500 || pf.MileageFee.Coefficient != 0.0004 {
		t.Fatalf("mileage fee = %+v", pf.MileageFee)
	}
}

func TestLoadParamsRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("days: 3\nbig_m_value: 10\n"), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}
	if _, err := LoadParams(path); err == nil {
		t.Fatalf("expected an error for an unknown key")
	}
}

func TestLoadNormalizesDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "PostgreSQL")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "pgx" {
		t.Fatalf("driver = %q, want pgx", cfg.DBDriver)
	}

	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for an unsupported driver")
	}
}
