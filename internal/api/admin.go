package api

import (
	"fmt"
	"net/http"
	"strings"

	"binrent/internal/config"
	"binrent/internal/model"
	"binrent/internal/opt"
)

// AdminSolverConfigHandler handles GET/PUT /v1/admin/solver/config. GET
// returns the effective defaults and whether an overlay is active.
func (s *Server) AdminSolverConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/solver/config" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		cfg, _ := s.Store.GetSolverConfig(r.Context())
		effective := s.Cfg.Solver
		if cfg != nil {
			effective = *cfg
		}
		writeJSON(w, http.StatusOK, map[string]any{"config": effective, "overlay": cfg != nil})
	case http.MethodPut:
		// start from the current effective values so partial bodies work
		body := s.Cfg.Solver
		if cur, _ := s.Store.GetSolverConfig(r.Context()); cur != nil {
			body = *cur
		}
		var wrap struct {
			Config *config.Solver `json:"config"`
		}
		wrap.Config = &body
		if !s.decode(w, r, &wrap) {
			return
		}
		if wrap.Config == nil {
			writeProblem(w, http.StatusBadRequest, "Missing config", "", r.URL.Path)
			return
		}
		if err := wrap.Config.Validate(); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid solver config", validationDetail(err), r.URL.Path)
			return
		}
		if err := s.Store.SaveSolverConfig(r.Context(), *wrap.Config); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save failed", err.Error(), r.URL.Path)
			return
		}
		s.Log.InfoContext(r.Context(), "solver defaults updated", "algorithm", wrap.Config.Algorithm, "max_iter", wrap.Config.MaxIter, "workers", wrap.Config.Workers)
		writeJSON(w, http.StatusOK, map[string]any{"config": *wrap.Config})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SolverMetricsHandler handles GET /v1/admin/solver-metrics[?algorithm=]
func (s *Server) SolverMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/solver-metrics" || r.Method != http.MethodGet {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	algo := r.URL.Query().Get("algorithm")
	ms := opt.GetMetrics()
	items := []map[string]any{}
	for _, a := range opt.Algorithms() {
		m, ok := ms[a.Name]
		if !ok || (algo != "" && a.Name != algo) {
			continue
		}
		avg := 0.0
		if m.Runs > 0 {
			avg = float64(m.TotalElapsed.Microseconds()) / 1000 / float64(m.Runs)
		}
		items = append(items, map[string]any{
			"algorithm":     a.Name,
			"runs":          m.Runs,
			"infeasible":    m.Infeasible,
			"bestObjective": model.Objective(m.BestObjective),
			"lastElapsedMs": float64(m.LastElapsed.Microseconds()) / 1000,
			"avgElapsedMs":  avg,
			"lastStats": model.StatsOut{
				Starts:             m.LastStats.Starts,
				Iterations:         m.LastStats.Iterations,
				Improvements:       m.LastStats.Improvements,
				NeighborsEvaluated: m.LastStats.NeighborsEvaluated,
				StartObjective:     model.Objective(m.LastStats.StartObjective),
				BestObjective:      model.Objective(m.LastStats.BestObjective),
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CallbackDeliveriesHandler handles GET /v1/admin/callback-deliveries
func (s *Server) CallbackDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/callback-deliveries" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	limit := 100
	if v := q.Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListCallbacks(r.Context(), q.Get("status"), q.Get("cursor"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// CallbackRetryHandler handles POST /v1/admin/callback-deliveries/{id}/retry
func (s *Server) CallbackRetryHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v1/admin/callback-deliveries/") || !strings.HasSuffix(r.URL.Path, "/retry") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/admin/callback-deliveries/"), "/retry")
	if err := s.Store.RetryCallback(r.Context(), id); err != nil {
		writeError(w, r, "Retry delivery failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": 1})
}
