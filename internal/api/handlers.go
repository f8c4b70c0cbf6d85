package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"binrent/internal/bench"
	"binrent/internal/exact"
	"binrent/internal/instance"
	"binrent/internal/metrics"
	"binrent/internal/model"
	"binrent/internal/opt"
	"binrent/internal/telemetry"
	"binrent/internal/webhooks"
)

// decode reads a JSON body capped at server.max_body_bytes. It writes the
// problem response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Body too large", err.Error(), r.URL.Path)
			return false
		}
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return false
	}
	return true
}

// resolve layers the request over the admin overlay over the configured
// solver defaults.
func (s *Server) resolve(ctx context.Context, algorithm string, in model.SolveOptions) (string, opt.Options, error) {
	base := s.Cfg.Solver
	if overlay, err := s.Store.GetSolverConfig(ctx); err == nil && overlay != nil {
		base = *overlay
	}
	if algorithm != "" {
		base.Algorithm = algorithm
	}
	if in.MaxIter > 0 {
		base.MaxIter = in.MaxIter
	}
	if in.Workers > 0 {
		base.Workers = in.Workers
	}
	if in.ItemOrder != "" {
		base.ItemOrder = in.ItemOrder
	}
	if in.BinOrder != "" {
		base.BinOrder = in.BinOrder
	}
	o, err := base.Options()
	return base.Algorithm, o, err
}

// SolveHandler handles POST /v1/solve. With ?async=true it answers 202 with
// the running run and finishes in the background.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var req model.SolveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	algo, o, err := s.resolve(r.Context(), req.Algorithm, req.Options)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solver options", err.Error(), r.URL.Path)
		return
	}

	run := model.Run{ID: uuid.NewString(), Status: model.RunRunning, Algorithm: algo, CreatedAt: time.Now().UTC()}
	if err := s.Store.SaveRun(r.Context(), run); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save run failed", err.Error(), r.URL.Path)
		return
	}
	publishRun(s.Broker, run.ID, SSEEvent{Type: EventRunStarted, Data: map[string]any{"runId": run.ID, "algorithm": algo}})

	if strings.EqualFold(r.URL.Query().Get("async"), "true") {
		go s.execute(context.WithoutCancel(r.Context()), run, req, o)
		w.Header().Set("Location", "/v1/runs/"+run.ID)
		writeJSON(w, http.StatusAccepted, run)
		return
	}
	run = s.execute(r.Context(), run, req, o)
	if run.Status == model.RunFailed {
		writeProblem(w, http.StatusInternalServerError, "Solve failed", run.Error, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// execute runs the solver and records the outcome everywhere it is observed:
// run registry, metrics, broker and the callback queue.
func (s *Server) execute(ctx context.Context, run model.Run, req model.SolveRequest, o opt.Options) model.Run {
	ctx, span := telemetry.Start(ctx, "solve",
		attribute.String("run.id", run.ID),
		attribute.String("algorithm", run.Algorithm),
		attribute.Int("items", len(req.Instance.Items)),
		attribute.Int("bins", len(req.Instance.Bins)),
	)
	defer span.End()

	res, err := opt.Solve(run.Algorithm, req.Instance, o)
	done := time.Now().UTC()
	run.CompletedAt = &done
	evt := SSEEvent{Type: EventRunCompleted, Data: map[string]any{"runId": run.ID, "algorithm": run.Algorithm}}
	if err != nil {
		telemetry.Fail(span, err)
		run.Status = model.RunFailed
		run.Error = err.Error()
		evt.Type = EventRunFailed
		evt.Data["error"] = run.Error
		s.Log.ErrorContext(ctx, "solve failed", "run_id", run.ID, "algorithm", run.Algorithm, "err", err)
	} else {
		metrics.ObserveSolve(run.Algorithm, res.Feasible, res.Elapsed, res.Stats.Iterations)
		run.Status = model.RunCompleted
		run.Result = model.NewRunResult(req.Instance.Items, res)
		span.SetAttributes(attribute.Bool("feasible", res.Feasible), attribute.Int("iterations", res.Stats.Iterations))
		evt.Data["objective"] = run.Result.Objective
		evt.Data["feasible"] = res.Feasible
		evt.Data["elapsedMs"] = run.Result.ElapsedMs
		s.Log.InfoContext(ctx, "solve completed",
			"run_id", run.ID,
			"algorithm", run.Algorithm,
			"objective", res.Objective,
			"feasible", res.Feasible,
			"elapsed_ms", run.Result.ElapsedMs,
		)
	}
	if err := s.Store.SaveRun(ctx, run); err != nil {
		s.Log.ErrorContext(ctx, "save run", "run_id", run.ID, "err", err)
	}
	publishRun(s.Broker, run.ID, evt)
	if _, err := s.Pub.Emit(ctx, run.ID, webhooks.EventRunCompleted, req.CallbackURL, req.CallbackSecret, run); err != nil {
		s.Log.ErrorContext(ctx, "enqueue callback", "run_id", run.ID, "err", err)
	}
	return run
}

// EvaluateHandler handles POST /v1/evaluate: scores an external assignment.
func (s *Server) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var req model.EvaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := validateEvaluateRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid evaluate request", err.Error(), r.URL.Path)
		return
	}
	assign := make(map[string]string, len(req.Assignments))
	for _, a := range req.Assignments {
		if _, dup := assign[a.Item]; dup {
			writeProblem(w, http.StatusBadRequest, "Invalid evaluate request", fmt.Sprintf("item %s assigned twice", a.Item), r.URL.Path)
			return
		}
		assign[a.Item] = a.Bin
	}
	sol, err := opt.FromAssignment(req.Instance, assign)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid assignment", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, model.EvaluateResponse{
		Valid:      sol.IsValid(req.Instance.Items),
		Objective:  model.Objective(sol.Objective(req.Instance.Items)),
		TotalCost:  sol.TotalCost(),
		Profit:     sol.Profit(),
		BudgetRes:  sol.BudgetRes,
		Bins:       model.BinLoads(sol),
		Violations: sol.Violations(req.Instance.Items),
	})
}

// BenchmarkHandler handles POST /v1/benchmark.
func (s *Server) BenchmarkHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var req model.BenchmarkRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := validateBenchmarkRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid benchmark request", err.Error(), r.URL.Path)
		return
	}
	var inst opt.Instance
	if req.Instance != nil {
		inst = *req.Instance
	} else {
		inst = instance.Generate(*req.Generate)
	}
	_, o, err := s.resolve(r.Context(), "", req.Options)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solver options", err.Error(), r.URL.Path)
		return
	}

	ctx, span := telemetry.Start(r.Context(), "benchmark", attribute.Bool("exact", req.Exact))
	defer span.End()
	rows, err := bench.Run(ctx, inst, bench.Config{
		Algorithms: req.Algorithms,
		Exact:      req.Exact,
		ExactOpts:  exact.Options{NodeLimit: s.Cfg.Exact.NodeLimit, TimeLimit: s.Cfg.Exact.TimeLimit},
		Options:    o,
		Log:        s.Log,
	})
	if err != nil {
		telemetry.Fail(span, err)
		writeError(w, r, "Benchmark failed", err)
		return
	}
	writeJSON(w, http.StatusOK, model.BenchmarkResponse{Items: len(inst.Items), Bins: len(inst.Bins), Rows: rows})
}

// GenerateHandler handles POST /v1/instances/generate. Fields left out of
// the body keep the generator defaults; ?format=yaml returns YAML.
func (s *Server) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	p := instance.DefaultParams()
	if r.ContentLength != 0 && !s.decode(w, r, &p) {
		return
	}
	if err := validate.Struct(p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid generator parameters", validationDetail(err), r.URL.Path)
		return
	}
	inst := instance.Generate(p)
	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		b, err := instance.Encode(inst, "yaml")
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Encode failed", err.Error(), r.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}
	writeJSON(w, http.StatusOK, inst.Clone())
}

// AlgorithmsHandler handles GET /v1/algorithms.
func (s *Server) AlgorithmsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": opt.Algorithms(), "default": s.Cfg.Solver.Algorithm})
}

// RunsHandler handles GET /v1/runs?status=&cursor=&limit=
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/runs" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	q := r.URL.Query()
	limit := 100
	if v := q.Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListRuns(r.Context(), q.Get("status"), q.Get("cursor"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RunByIDHandler handles GET /v1/runs/{id} and GET /v1/runs/{id}/events/stream
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/runs/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	switch {
	case len(parts) == 1:
		run, err := s.Store.GetRun(r.Context(), id)
		if err != nil {
			writeError(w, r, "Get run failed", err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream":
		s.streamRun(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
	}
}

// streamRun sends run events as SSE. A run that already finished gets its
// terminal event replayed and the stream ends. The subscription is taken
// before the run is read so a run finishing in between is still seen.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request, id string) {
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	var run model.Run
	if id != AllRuns {
		var err error
		run, err = s.Store.GetRun(r.Context(), id)
		if err != nil {
			writeError(w, r, "Get run failed", err)
			return
		}
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(evt SSEEvent) {
		b, _ := json.Marshal(evt.Data)
		fmt.Fprintf(w, "event: %s\n", evt.Type)
		fmt.Fprintf(w, "data: %s\n\n", b)
		flusher.Flush()
	}
	heartbeat := func() {
		send(SSEEvent{Type: "heartbeat", Data: map[string]any{"runId": id, "ts": time.Now().UTC().Format(time.RFC3339)}})
	}

	heartbeat()
	if run.Status == model.RunCompleted || run.Status == model.RunFailed {
		send(terminalEvent(run))
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			send(evt)
			if id != AllRuns && (evt.Type == EventRunCompleted || evt.Type == EventRunFailed) {
				return
			}
		case <-ticker.C:
			heartbeat()
		}
	}
}

func terminalEvent(run model.Run) SSEEvent {
	if run.Status == model.RunFailed {
		return SSEEvent{Type: EventRunFailed, Data: map[string]any{"runId": run.ID, "algorithm": run.Algorithm, "error": run.Error}}
	}
	data := map[string]any{"runId": run.ID, "algorithm": run.Algorithm}
	if run.Result != nil {
		data["objective"] = run.Result.Objective
		data["feasible"] = run.Result.Feasible
		data["elapsedMs"] = run.Result.ElapsedMs
	}
	return SSEEvent{Type: EventRunCompleted, Data: data}
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(ctx context.Context) error }
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	if p, ok := s.Broker.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "broker: "+err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
