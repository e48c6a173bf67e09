package main

import (
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"time"

	"cash-routing-service/internal/adapters/cache"
	"cash-routing-service/internal/adapters/repositories"
	"cash-routing-service/internal/adapters/solvers"
	"cash-routing-service/internal/api"
	"cash-routing-service/internal/config"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/platform/db"
	"cash-routing-service/internal/ports"
	"cash-routing-service/internal/services"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, solver backends) behind ports and starts the HTTP server.
func main() {
	flag.Parse()
	defer glog.Flush()

	if !config.LoadDotEnv() {
		glog.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		glog.Exit(err)
	}

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DSN())
	if err != nil {
		glog.Exit(err)
	}
	defer conn.Close()

	// Initialize schema on startup so local runs need no separate tool.
	if err := repositories.InitSchema(conn); err != nil {
		glog.Exit(err)
	}

	resultCache, err := newResultCache(cfg, conn)
	if err != nil {
		glog.Exit(err)
	}

	backend := solvers.Resolve(cfg.Solver)
	planner := services.NewPlanner(resultCache, repositories.NewSQLRunRepository(conn, cfg.DBDriver))

	var limiter *rate.Limiter
	if cfg.SolveRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SolveRateLimit), max(cfg.SolveBurst, 1))
	}

	router := api.NewRouter(api.Deps{
		Planner: planner,
		Defaults: domain.Params{
			Backend:     backend.String(),
			Threads:     cfg.Threads,
			Parallelism: cfg.Parallelism,
			TimeLimit:   cfg.TimeLimit,
		},
		SolveLimiter: limiter,
	})

	glog.Infof("Server listening addr=:%s solver=%s db=%s", cfg.Port, backend, cfg.DBDriver)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Solve handlers move their own write deadline by sub-problem count.
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	glog.Exit(srv.ListenAndServe())
}

// newResultCache prefers Redis and falls back to the SQL store.
func newResultCache(cfg config.Config, conn *sql.DB) (ports.ResultCache, error) {
	if cfg.RedisURL == "" {
		return cache.NewSQLResultCache(conn, cfg.DBDriver, cfg.CacheTTL), nil
	}
	c, err := cache.NewRedisResultCache(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("result cache: %w", err)
	}
	return c, nil
}
