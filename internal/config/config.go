package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Get returns the environment value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Config is the service configuration read from the environment.
type Config struct {
	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	Solver      string
	Threads     int
	Parallelism int
	TimeLimit   time.Duration

	// SolveRateLimit is the sustained number of solve requests per second.
	SolveRateLimit float64
	SolveBurst     int
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBDriver:    Get("DB_DRIVER", ""),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisURL:    Get("REDIS_URL", ""),
		Solver:      Get("SOLVER", ""),
	}
	switch strings.ToLower(cfg.DBDriver) {
	case "":
		cfg.DBDriver = "sqlite"
		if cfg.DatabaseURL != "" {
			cfg.DBDriver = "pgx"
		}
	case "pgx", "postgres", "postgresql":
		cfg.DBDriver = "pgx"
	case "sqlite", "sqlite3":
		cfg.DBDriver = "sqlite"
	default:
		return Config{}, fmt.Errorf("config: DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}

	var err error
	if cfg.CacheTTL, err = duration("CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TimeLimit, err = duration("SOLVE_TIME_LIMIT", 0); err != nil {
		return Config{}, err
	}
	if cfg.Threads, err = integer("SOLVER_THREADS", 0); err != nil {
		return Config{}, err
	}
	if cfg.Parallelism, err = integer("SOLVE_PARALLELISM", 1); err != nil {
		return Config{}, err
	}
	if cfg.SolveBurst, err = integer("SOLVE_BURST", 4); err != nil {
		return Config{}, err
	}
	if cfg.SolveRateLimit, err = number("SOLVE_RATE_LIMIT", 2); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the data source for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "pgx" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s: must not be negative", key)
	}
	return d, nil
}

func integer(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("config: %s: must not be negative", key)
	}
	return n, nil
}

func number(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("config: %s: must not be negative", key)
	}
	return f, nil
}
