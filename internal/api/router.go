package api

import (
	"net/http"

	"cash-routing-service/internal/api/handlers"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the router's collaborators.
type Deps struct {
	Planner handlers.Planner
	// Defaults fill solver settings a request leaves unset.
	Defaults domain.Params
	// SolveLimiter throttles the solve endpoints; nil disables throttling.
	SolveLimiter *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(deps Deps) http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()

	solveHandler := &handlers.SolveHandler{Planner: deps.Planner, Defaults: deps.Defaults}
	runsHandler := &handlers.RunsHandler{Planner: deps.Planner}

	mux.HandleFunc("/health", handlers.Health(deps.Defaults.Backend))
	mux.HandleFunc("/solve", rateLimit(deps.SolveLimiter, solveHandler.Solve))
	mux.HandleFunc("/solve/stream", rateLimit(deps.SolveLimiter, solveHandler.Stream))
	mux.HandleFunc("/gain", rateLimit(deps.SolveLimiter, solveHandler.Gain))
	mux.HandleFunc("/runs", runsHandler.List)
	mux.HandleFunc("/runs/{id}", runsHandler.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
