package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Subproblems counts solved sub-problems by backend and outcome.
	Subproblems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cashplan_subproblems_total", Help: "Solved sub-problems by backend and outcome."},
		[]string{"backend", "outcome"},
	)
	SubproblemDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "cashplan_subproblem_duration_seconds", Help: "Backend solve time per sub-problem.", Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120}},
		[]string{"backend"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cashplan_cache_lookups_total", Help: "Result cache lookups by outcome."},
		[]string{"result"},
	)
)

// RegisterDefault registers collectors to Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Subproblems)
		Registry.MustRegister(SubproblemDuration)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
