package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"binrent/internal/auth"
	"binrent/internal/config"
	"binrent/internal/metrics"
	"binrent/internal/store"
	"binrent/internal/webhooks"
)

type Server struct {
	Store   store.Store
	Pub     *webhooks.Publisher
	Auth    *auth.Verifier
	Broker  EventBroker
	Log     *slog.Logger
	Cfg     *config.Config
	limiter *rate.Limiter
}

// NewServer wires the in-memory run registry and picks the Redis broker when
// redis.url is set, falling back to the in-process one if Redis is unusable.
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	s := store.NewMemory()
	var broker EventBroker = NewBroker()
	if cfg.Redis.URL != "" {
		rb, err := NewRedisBroker(cfg.Redis.URL)
		if err != nil {
			log.Warn("redis broker unavailable, using in-memory broker", "err", err)
		} else {
			broker = rb
		}
	}
	srv := &Server{
		Store:  s,
		Pub:    webhooks.NewPublisher(s),
		Auth:   auth.NewVerifier(cfg.Auth.Mode, cfg.Auth.HMACSecret),
		Broker: broker,
		Log:    log,
		Cfg:    cfg,
	}
	if cfg.RateLimit.RPS > 0 {
		srv.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}
	return srv, nil
}

// Handler registers every route and wraps the mux in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Solving
	mux.HandleFunc("/v1/solve", s.SolveHandler)
	mux.HandleFunc("/v1/evaluate", s.EvaluateHandler)
	mux.HandleFunc("/v1/benchmark", s.BenchmarkHandler)
	mux.HandleFunc("/v1/instances/generate", s.GenerateHandler)
	mux.HandleFunc("/v1/algorithms", s.AlgorithmsHandler)

	// Runs
	mux.HandleFunc("/v1/runs", s.RunsHandler)
	mux.HandleFunc("/v1/runs/ws", s.RunsWSHandler)
	mux.HandleFunc("/v1/runs/", s.RunByIDHandler) // includes /events/stream

	// Admin
	mux.HandleFunc("/v1/admin/solver/config", s.AdminSolverConfigHandler)
	mux.HandleFunc("/v1/admin/solver-metrics", s.SolverMetricsHandler)
	mux.HandleFunc("/v1/admin/callback-deliveries", s.CallbackDeliveriesHandler)
	mux.HandleFunc("/v1/admin/callback-deliveries/", s.CallbackRetryHandler)

	// Health, docs, debug
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/info", s.DebugJSON)
	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", s.OpenAPIJSONHandler)
	mux.HandleFunc("/docs", s.DocsHandler)

	return s.logMiddleware(metricsMiddleware(s.rateLimit(mux)))
}

// NewCallbackWorker creates a background worker for completion callbacks.
func (s *Server) NewCallbackWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store, s.Cfg.Callbacks, s.Log)
}
