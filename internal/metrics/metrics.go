package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts solver runs by algorithm and whether the result was feasible
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "binrent_solves_total", Help: "Solver runs by algorithm and feasibility."},
		[]string{"algorithm", "feasible"},
	)
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "binrent_solve_duration_seconds", Help: "Solver wall time in seconds.", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30}},
		[]string{"algorithm"},
	)
	// SearchIterations observes improvement-loop rounds per run
	SearchIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "binrent_search_iterations", Help: "Improvement loop rounds per solver run.", Buckets: prometheus.ExponentialBuckets(1, 4, 8)},
		[]string{"algorithm"},
	)

	// CallbackDeliveries counts completion callback outcomes by event type and status
	CallbackDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "callback_deliveries_total", Help: "Callback deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// CallbackLatency tracks callback delivery latencies in milliseconds
	CallbackLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "callback_delivery_latency_ms", Help: "Callback delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SearchIterations)
		Registry.MustRegister(CallbackDeliveries)
		Registry.MustRegister(CallbackLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// ObserveSolve records one solver run.
func ObserveSolve(algorithm string, feasible bool, elapsed time.Duration, iterations int) {
	Solves.WithLabelValues(algorithm, strconv.FormatBool(feasible)).Inc()
	SolveDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	SearchIterations.WithLabelValues(algorithm).Observe(float64(iterations))
}
