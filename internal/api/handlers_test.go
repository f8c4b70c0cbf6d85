package api

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/websocket"

    "binrent/internal/auth"
    "binrent/internal/config"
    "binrent/internal/instance"
    "binrent/internal/metrics"
    "binrent/internal/model"
    "binrent/internal/opt"
    "binrent/internal/store"
)

const testInstance = `{
  "items": [
    {"id": "c1", "profit": 10, "weight": 6, "compulsory": true},
    {"id": "c2", "profit": 10, "weight": 4, "compulsory": true},
    {"id": "o1", "profit": 40, "weight": 5},
    {"id": "o2", "profit": 25, "weight": 3}
  ],
  "bins": [
    {"id": "big", "type": 1, "capacity": 20, "cost": 60},
    {"id": "mid", "type": 2, "capacity": 12, "cost": 35},
    {"id": "small", "type": 3, "capacity": 8, "cost": 20}
  ],
  "budget": 120
}`

func newTestServerWith(t *testing.T, mutate func(*config.Config)) *Server {
    t.Helper()
    cfg := config.Default()
    cfg.RateLimit.RPS = 0
    if mutate != nil { mutate(cfg) }
    s, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
    if err != nil { t.Fatalf("NewServer: %v", err) }
    return s
}

func newTestServer(t *testing.T) *Server { return newTestServerWith(t, nil) }

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    h(rr, req)
    return rr
}

func decodeRun(t *testing.T, rr *httptest.ResponseRecorder) model.Run {
    t.Helper()
    var run model.Run
    if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil { t.Fatalf("decode run: %v: %s", err, rr.Body.String()) }
    return run
}

func TestHealthReady(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    if rr.Code != 200 { t.Fatalf("health: got %d", rr.Code) }
    rr = httptest.NewRecorder()
    s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
    if rr.Code != 200 { t.Fatalf("ready: got %d", rr.Code) }
}

func TestSolveAndGetRun(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`,"algorithm":"grasp","options":{"workers":2}}`)
    if rr.Code != 200 { t.Fatalf("solve: %d %s", rr.Code, rr.Body.String()) }
    run := decodeRun(t, rr)
    if run.Status != model.RunCompleted || run.Algorithm != "grasp" { t.Fatalf("run: %+v", run) }
    if run.Result == nil || run.Result.Objective == nil || !run.Result.Feasible { t.Fatalf("result: %+v", run.Result) }
    if len(run.Result.Assignments) == 0 || len(run.Result.Bins) == 0 { t.Fatalf("empty packing: %+v", run.Result) }
    for _, b := range run.Result.Bins {
        if b.Load > b.Capacity { t.Fatalf("bin %s over capacity", b.ID) }
    }
    if run.Result.Stats.Starts < 10 { t.Fatalf("grasp starts: %d", run.Result.Stats.Starts) }

    rr = httptest.NewRecorder()
    s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil))
    if rr.Code != 200 { t.Fatalf("get run: %d", rr.Code) }
    if got := decodeRun(t, rr); got.ID != run.ID || got.Status != model.RunCompleted { t.Fatalf("stored run: %+v", got) }

    rr = httptest.NewRecorder()
    s.RunsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs?status=completed", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), run.ID) { t.Fatalf("list runs: %d %s", rr.Code, rr.Body.String()) }

    rr = httptest.NewRecorder()
    s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/nope", nil))
    if rr.Code != 404 { t.Fatalf("missing run: %d", rr.Code) }
}

func TestSolveInfeasibleObjectiveIsNull(t *testing.T) {
    s := newTestServer(t)
    inst := strings.Replace(testInstance, `"budget": 120`, `"budget": 10`, 1)
    rr := postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+inst+`,"algorithm":"first_fit"}`)
    if rr.Code != 200 { t.Fatalf("solve: %d %s", rr.Code, rr.Body.String()) }
    if !strings.Contains(rr.Body.String(), `"objective":null`) { t.Fatalf("want null objective: %s", rr.Body.String()) }
    run := decodeRun(t, rr)
    if run.Result.Feasible { t.Fatal("expected infeasible") }
}

func TestSolveRejectsBadRequests(t *testing.T) {
    s := newTestServer(t)
    cases := map[string]string{
        "bad json":          `{"instance":`,
        "unknown algorithm": `{"instance":` + testInstance + `,"algorithm":"tabu"}`,
        "bad item order":    `{"instance":` + testInstance + `,"options":{"itemOrder":"x"}}`,
        "invalid instance":  `{"instance":{"items":[{"id":"a","weight":-1}],"bins":[],"budget":1}}`,
        "secret without url": `{"instance":` + testInstance + `,"callbackSecret":"s"}`,
    }
    for name, body := range cases {
        rr := postJSON(s.SolveHandler, "/v1/solve", body)
        if rr.Code != 400 { t.Fatalf("%s: got %d %s", name, rr.Code, rr.Body.String()) }
    }
    rr := httptest.NewRecorder()
    s.SolveHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solve", nil))
    if rr.Code != 405 { t.Fatalf("GET solve: %d", rr.Code) }
}

func TestSolveBodyLimit(t *testing.T) {
    s := newTestServerWith(t, func(c *config.Config) { c.Server.MaxBodyBytes = 64 })
    rr := postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`}`)
    if rr.Code != http.StatusRequestEntityTooLarge { t.Fatalf("got %d", rr.Code) }
}

func TestSolveAsync(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(s.SolveHandler, "/v1/solve?async=true", `{"instance":`+testInstance+`,"algorithm":"lns"}`)
    if rr.Code != 202 { t.Fatalf("async solve: %d", rr.Code) }
    run := decodeRun(t, rr)
    if rr.Header().Get("Location") != "/v1/runs/"+run.ID { t.Fatalf("location: %q", rr.Header().Get("Location")) }
    deadline := time.Now().Add(5 * time.Second)
    for {
        got, err := s.Store.GetRun(context.Background(), run.ID)
        if err != nil { t.Fatalf("get run: %v", err) }
        if got.Status == model.RunCompleted { break }
        if time.Now().After(deadline) { t.Fatalf("run still %s", got.Status) }
        time.Sleep(10 * time.Millisecond)
    }
}

func TestSolveEnqueuesCallback(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`,"callbackUrl":"http://example.test/hook","callbackSecret":"k"}`)
    if rr.Code != 200 { t.Fatalf("solve: %d %s", rr.Code, rr.Body.String()) }
    run := decodeRun(t, rr)

    rr = httptest.NewRecorder()
    s.CallbackDeliveriesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/callback-deliveries", nil))
    if rr.Code != 200 { t.Fatalf("deliveries: %d", rr.Code) }
    var page struct{ Items []model.CallbackOut `json:"items"` }
    _ = json.Unmarshal(rr.Body.Bytes(), &page)
    if len(page.Items) != 1 || page.Items[0].RunID != run.ID || page.Items[0].Status != store.DeliveryPending {
        t.Fatalf("deliveries: %+v", page.Items)
    }

    rr = httptest.NewRecorder()
    s.CallbackRetryHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/admin/callback-deliveries/"+page.Items[0].ID+"/retry", nil))
    if rr.Code != 202 { t.Fatalf("retry: %d", rr.Code) }
    rr = httptest.NewRecorder()
    s.CallbackRetryHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/admin/callback-deliveries/nope/retry", nil))
    if rr.Code != 404 { t.Fatalf("retry missing: %d", rr.Code) }
}

func TestEvaluate(t *testing.T) {
    s := newTestServer(t)
    body := `{"instance":` + testInstance + `,"assignments":[{"item":"c1","bin":"mid"},{"item":"c2","bin":"mid"},{"item":"o2","bin":"small"}]}`
    rr := postJSON(s.EvaluateHandler, "/v1/evaluate", body)
    if rr.Code != 200 { t.Fatalf("evaluate: %d %s", rr.Code, rr.Body.String()) }
    var out model.EvaluateResponse
    _ = json.Unmarshal(rr.Body.Bytes(), &out)
    if !out.Valid || out.Objective == nil || *out.Objective != 30 { t.Fatalf("evaluate: %+v", out) }

    // c2 missing and small overfilled
    body = `{"instance":` + testInstance + `,"assignments":[{"item":"c1","bin":"small"},{"item":"o2","bin":"small"}]}`
    rr = postJSON(s.EvaluateHandler, "/v1/evaluate", body)
    _ = json.Unmarshal(rr.Body.Bytes(), &out)
    if out.Valid || out.Objective != nil || len(out.Violations) != 2 { t.Fatalf("invalid evaluate: %+v", out) }

    for _, bad := range []string{
        `[{"item":"c1","bin":"mid"},{"item":"c1","bin":"big"}]`,
        `[{"item":"c1","bin":"nowhere"}]`,
        `[{"item":"ghost","bin":"mid"}]`,
        `[{"item":"c1"}]`,
    } {
        rr = postJSON(s.EvaluateHandler, "/v1/evaluate", `{"instance":`+testInstance+`,"assignments":`+bad+`}`)
        if rr.Code != 400 { t.Fatalf("%s: got %d", bad, rr.Code) }
    }
}

func TestGenerate(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(s.GenerateHandler, "/v1/instances/generate", `{"bins":5,"binTypes":2,"compulsory":1,"optional":2,"seed":7}`)
    if rr.Code != 200 { t.Fatalf("generate: %d %s", rr.Code, rr.Body.String()) }
    var inst struct {
        Items []json.RawMessage `json:"items"`
        Bins  []json.RawMessage `json:"bins"`
    }
    _ = json.Unmarshal(rr.Body.Bytes(), &inst)
    if len(inst.Items) != 3 || len(inst.Bins) != 5 { t.Fatalf("shape: %d items %d bins", len(inst.Items), len(inst.Bins)) }

    rr = httptest.NewRecorder()
    s.GenerateHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/instances/generate?format=yaml", nil))
    if rr.Code != 200 || rr.Header().Get("Content-Type") != "application/yaml" { t.Fatalf("yaml: %d %s", rr.Code, rr.Header().Get("Content-Type")) }
    if !strings.Contains(rr.Body.String(), "budget:") { t.Fatalf("yaml body: %s", rr.Body.String()) }

    rr = postJSON(s.GenerateHandler, "/v1/instances/generate", `{"bins":0}`)
    if rr.Code != 400 { t.Fatalf("zero bins: %d", rr.Code) }
}

func TestBenchmark(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(s.BenchmarkHandler, "/v1/benchmark", `{"instance":`+testInstance+`,"algorithms":["greedy","grasp"],"exact":true}`)
    if rr.Code != 200 { t.Fatalf("benchmark: %d %s", rr.Code, rr.Body.String()) }
    var out model.BenchmarkResponse
    _ = json.Unmarshal(rr.Body.Bytes(), &out)
    if len(out.Rows) != 3 || out.Rows[0].Algorithm != "exact" || out.Items != 4 || out.Bins != 3 { t.Fatalf("rows: %+v", out) }

    rr = postJSON(s.BenchmarkHandler, "/v1/benchmark", `{"algorithms":["greedy"]}`)
    if rr.Code != 400 { t.Fatalf("no instance: %d", rr.Code) }
    rr = postJSON(s.BenchmarkHandler, "/v1/benchmark", `{"instance":`+testInstance+`,"algorithms":["tabu"]}`)
    if rr.Code != 400 { t.Fatalf("unknown algorithm: %d", rr.Code) }
}

func TestAlgorithms(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.AlgorithmsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/algorithms", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), "grasp_large_search") { t.Fatalf("algorithms: %d %s", rr.Code, rr.Body.String()) }
}

func TestAdminSolverConfigOverlay(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPut, "/v1/admin/solver/config", strings.NewReader(`{"config":{"algorithm":"local_search"}}`))
    s.AdminSolverConfigHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("put config: %d %s", rr.Code, rr.Body.String()) }

    rr = postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`}`)
    if run := decodeRun(t, rr); run.Algorithm != "local_search" { t.Fatalf("overlay ignored: %s", run.Algorithm) }

    rr = httptest.NewRecorder()
    s.AdminSolverConfigHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/solver/config", nil))
    if !strings.Contains(rr.Body.String(), `"overlay":true`) { t.Fatalf("get config: %s", rr.Body.String()) }

    rr = httptest.NewRecorder()
    s.AdminSolverConfigHandler(rr, httptest.NewRequest(http.MethodPut, "/v1/admin/solver/config", strings.NewReader(`{"config":{"algorithm":"tabu"}}`)))
    if rr.Code != 400 { t.Fatalf("bad config: %d", rr.Code) }

    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/admin/solver/config", nil)
    req.Header.Set("X-Role", "user")
    s.AdminSolverConfigHandler(rr, req)
    if rr.Code != 403 { t.Fatalf("non-admin: %d", rr.Code) }
}

func TestSolverMetrics(t *testing.T) {
    s := newTestServer(t)
    _ = postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`,"algorithm":"greedy"}`)
    rr := httptest.NewRecorder()
    s.SolverMetricsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/solver-metrics?algorithm=greedy", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"algorithm":"greedy"`) { t.Fatalf("solver metrics: %d %s", rr.Code, rr.Body.String()) }
}

func TestHMACAuth(t *testing.T) {
    s := newTestServerWith(t, func(c *config.Config) { c.Auth.Mode = "hmac"; c.Auth.HMACSecret = "topsecret" })
    rr := postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`}`)
    if rr.Code != 401 { t.Fatalf("no token: %d", rr.Code) }

    tok, err := auth.Sign("topsecret", "alice", "user", time.Minute)
    if err != nil { t.Fatalf("sign: %v", err) }
    rr = httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(`{"instance":`+testInstance+`}`))
    req.Header.Set("Authorization", "Bearer "+tok)
    s.SolveHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("user token: %d %s", rr.Code, rr.Body.String()) }

    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/admin/solver-metrics", nil)
    req.Header.Set("Authorization", "Bearer "+tok)
    s.SolverMetricsHandler(rr, req)
    if rr.Code != 403 { t.Fatalf("user on admin: %d", rr.Code) }

    bad, _ := auth.Sign("other", "mallory", "admin", time.Minute)
    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
    req.Header.Set("Authorization", "Bearer "+bad)
    s.RunsHandler(rr, req)
    if rr.Code != 401 { t.Fatalf("forged token: %d", rr.Code) }
}

func TestRateLimit(t *testing.T) {
    s := newTestServerWith(t, func(c *config.Config) { c.RateLimit.RPS = 0.001; c.RateLimit.Burst = 1 })
    h := s.Handler()
    get := func(path string) int {
        rr := httptest.NewRecorder()
        h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
        return rr.Code
    }
    if c := get("/v1/algorithms"); c != 200 { t.Fatalf("first: %d", c) }
    if c := get("/v1/algorithms"); c != 429 { t.Fatalf("second: %d", c) }
    if c := get("/healthz"); c != 200 { t.Fatalf("probe limited: %d", c) }
}

func TestStreamReplaysFinishedRun(t *testing.T) {
    s := newTestServer(t)
    run := decodeRun(t, postJSON(s.SolveHandler, "/v1/solve", `{"instance":`+testInstance+`,"algorithm":"greedy"}`))
    rr := httptest.NewRecorder()
    s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID+"/events/stream", nil))
    body := rr.Body.String()
    if rr.Header().Get("Content-Type") != "text/event-stream" { t.Fatalf("content type: %s", rr.Header().Get("Content-Type")) }
    if !strings.Contains(body, "event: heartbeat") || !strings.Contains(body, "event: run.completed") { t.Fatalf("stream: %s", body) }
}

// finishingStore completes the run while the stream handler is reading it and
// hands back the stale running record.
type finishingStore struct {
    store.Store
    broker EventBroker
}

func (f finishingStore) GetRun(ctx context.Context, id string) (model.Run, error) {
    run, err := f.Store.GetRun(ctx, id)
    if err != nil || run.Status != model.RunRunning { return run, err }
    done := run
    done.Status = model.RunCompleted
    if err := f.Store.SaveRun(ctx, done); err != nil { return run, err }
    publishRun(f.broker, id, terminalEvent(done))
    return run, nil
}

func TestStreamSeesRunFinishingDuringRead(t *testing.T) {
    s := newTestServer(t)
    ctx := context.Background()
    if err := s.Store.SaveRun(ctx, model.Run{ID: "run_race", Status: model.RunRunning, Algorithm: opt.AlgGreedy, CreatedAt: time.Now().UTC()}); err != nil { t.Fatalf("save: %v", err) }
    s.Store = finishingStore{Store: s.Store, broker: s.Broker}

    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    rr := httptest.NewRecorder()
    s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/run_race/events/stream", nil).WithContext(ctx))
    if ctx.Err() != nil { t.Fatalf("stream waited for the deadline: %s", rr.Body.String()) }
    if !strings.Contains(rr.Body.String(), "event: run.completed") { t.Fatalf("stream: %s", rr.Body.String()) }
}

func TestRunsWebSocket(t *testing.T) {
    s := newTestServer(t)
    ts := httptest.NewServer(s.Handler())
    defer ts.Close()

    c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/runs/ws", nil)
    if err != nil { t.Fatalf("dial: %v", err) }
    defer c.Close()
    _ = c.SetReadDeadline(time.Now().Add(5 * time.Second))

    read := func() wsMessage {
        var m wsMessage
        if err := c.ReadJSON(&m); err != nil { t.Fatalf("read: %v", err) }
        return m
    }
    _ = c.WriteJSON(wsMessage{Type: "connection_init"})
    if m := read(); m.Type != "connection_ack" { t.Fatalf("want ack, got %s", m.Type) }
    _ = c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: json.RawMessage(`{"runId":"*"}`)})
    // messages are handled in order, so the pong means the subscription is live
    _ = c.WriteJSON(wsMessage{Type: "ping"})
    if m := read(); m.Type != "pong" { t.Fatalf("want pong, got %s", m.Type) }

    resp, err := http.Post(ts.URL+"/v1/solve", "application/json", bytes.NewReader([]byte(`{"instance":`+testInstance+`,"algorithm":"greedy"}`)))
    if err != nil { t.Fatalf("post: %v", err) }
    _ = resp.Body.Close()

    seen := map[string]bool{}
    for !seen[EventRunCompleted] {
        m := read()
        if m.Type != "next" || m.ID != "1" { continue }
        var evt struct{ Type string `json:"type"` }
        _ = json.Unmarshal(m.Payload, &evt)
        seen[evt.Type] = true
    }
    if !seen[EventRunStarted] { t.Fatalf("run.started not delivered: %v", seen) }
}

func TestOpenAPI(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.OpenAPIHandler(rr, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), "/v1/solve") { t.Fatalf("yaml: %d", rr.Code) }
    rr = httptest.NewRecorder()
    s.OpenAPIJSONHandler(rr, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
    var doc map[string]any
    if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil || doc["openapi"] != "3.0.3" { t.Fatalf("json: %v %v", err, doc["openapi"]) }
}

func TestMetricsEndpoint(t *testing.T) {
    metrics.RegisterDefault()
    s := newTestServer(t)
    h := s.Handler()
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(`{"instance":`+testInstance+`,"algorithm":"greedy"}`))
    h.ServeHTTP(rr, req)
    if rr.Code != 200 { t.Fatalf("solve: %d", rr.Code) }
    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
    body := rr.Body.String()
    if !strings.Contains(body, "binrent_solves_total") || !strings.Contains(body, `path="/v1/solve"`) { t.Fatalf("metrics missing series") }
}

func TestRouteLabel(t *testing.T) {
    cases := map[string]string{
        "/v1/runs/abc":                           "/v1/runs/{id}",
        "/v1/runs/abc/events/stream":             "/v1/runs/{id}/events/stream",
        "/v1/runs/ws":                            "/v1/runs/ws",
        "/v1/admin/callback-deliveries/x/retry":  "/v1/admin/callback-deliveries/{id}/retry",
        "/v1/solve":                              "/v1/solve",
    }
    for in, want := range cases {
        if got := routeLabel(in); got != want { t.Fatalf("routeLabel(%s) = %s, want %s", in, got, want) }
    }
}

func TestDebugAndDocs(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.DebugJSON(rr, httptest.NewRequest(http.MethodGet, "/debug/info", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"redisBroker":false`) { t.Fatalf("debug: %d %s", rr.Code, rr.Body.String()) }
    if strings.Contains(rr.Body.String(), "hmac_secret") { t.Fatalf("debug leaks secrets") }

    rr = httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodGet, "/debug/info", nil)
    req.Header.Set("X-Role", "user")
    s.DebugJSON(rr, req)
    if rr.Code != 403 { t.Fatalf("debug as user: %d", rr.Code) }

    rr = httptest.NewRecorder()
    s.DocsHandler(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))
    if rr.Code != 200 || !strings.Contains(rr.Body.String(), "redoc") { t.Fatalf("docs: %d", rr.Code) }
}

func TestStatusFor(t *testing.T) {
    cases := []struct {
        err  error
        want int
    }{
        {fmt.Errorf("run x: %w", store.ErrNotFound), 404},
        {instance.Validate(opt.Instance{Items: []opt.Item{{ID: "a", Weight: -1}}, Budget: -1}), 400},
        {fmt.Errorf("%w: tabu", opt.ErrUnknownAlgorithm), 400},
        {fmt.Errorf("bench: %w", context.DeadlineExceeded), 504},
        {context.Canceled, 499},
        {fmt.Errorf("boom"), 500},
    }
    for _, c := range cases {
        if got := statusFor(c.err); got != c.want { t.Fatalf("statusFor(%v) = %d, want %d", c.err, got, c.want) }
    }
}
