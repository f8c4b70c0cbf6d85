package api

import (
	"net/http"
	"time"

	"binrent/internal/buildinfo"
	"binrent/internal/opt"
)

// DebugJSON reports build info and the non-secret parts of the config.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	_, redis := s.Broker.(*RedisBroker)
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"addr":                s.Cfg.Server.Addr,
			"authMode":            s.Auth.Mode,
			"rateRps":             s.Cfg.RateLimit.RPS,
			"rateBurst":           s.Cfg.RateLimit.Burst,
			"callbackMaxAttempts": s.Cfg.Callbacks.MaxAttempts,
			"tracing":             s.Cfg.Tracing.Enabled,
			"solver":              s.Cfg.Solver,
			"exactNodeLimit":      s.Cfg.Exact.NodeLimit,
			"redisBroker":         redis,
		},
		"algorithms": len(opt.Algorithms()),
	}
	writeJSON(w, http.StatusOK, info)
}
