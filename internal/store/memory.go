package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"binrent/internal/config"
	"binrent/internal/model"
)

// Memory keeps runs and callback deliveries for the life of the process.
type Memory struct {
	mu         sync.Mutex
	runs       map[string]model.Run    // id -> run
	runIDs     []string                // creation order
	deliveries map[string]*memDelivery // id -> delivery state
	order      []string                // delivery ids, enqueue order
	dlq        []string                // dead-lettered delivery ids
	solverCfg  *config.Solver
}

func NewMemory() *Memory {
	return &Memory{
		runs:       map[string]model.Run{},
		deliveries: map[string]*memDelivery{},
	}
}

// memDelivery augments CallbackDelivery with scheduling/metrics
type memDelivery struct {
	CallbackDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

// SaveRun inserts or replaces a run. A run without an id gets one.
func (m *Memory) SaveRun(ctx context.Context, run model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if _, ok := m.runs[run.ID]; !ok {
		m.runIDs = append(m.runIDs, run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return r, nil
}

// ListRuns pages through runs in creation order. The cursor is the id of the
// last run of the previous page.
func (m *Memory) ListRuns(ctx context.Context, status, cursor string, limit int) ([]model.Run, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := 0
	if cursor != "" {
		for i, id := range m.runIDs {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Run{}
	var next string
	for i := start; i < len(m.runIDs) && len(out) < limit; i++ {
		r := m.runs[m.runIDs[i]]
		if status == "" || r.Status == status {
			out = append(out, r)
		}
		next = m.runIDs[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

// Callback deliveries
func (m *Memory) EnqueueCallback(ctx context.Context, runID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		CallbackDelivery: CallbackDelivery{ID: id, RunID: runID, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: DeliveryPending},
		NextAttemptAt:    time.Now(),
	}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Memory) FetchDueCallbacks(ctx context.Context, limit int) ([]CallbackDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := []CallbackDelivery{}
	for _, id := range m.order {
		d := m.deliveries[id]
		if (d.Status == DeliveryPending || d.Status == DeliveryRetry) && !d.NextAttemptAt.After(now) {
			out = append(out, d.CallbackDelivery)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkCallback(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil {
		return ErrNotFound
	}
	d.Attempts++
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = DeliveryDelivered
		d.LastError = ""
		now := time.Now()
		d.DeliveredAt = &now
		return nil
	}
	d.Status = DeliveryRetry
	d.LastError = lastError
	if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	} else {
		d.NextAttemptAt = time.Now().Add(time.Minute)
	}
	return nil
}

// FailCallback dead-letters a delivery after its final attempt.
func (m *Memory) FailCallback(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = DeliveryFailed
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	m.dlq = append(m.dlq, id)
	return nil
}

func (m *Memory) ListCallbacks(ctx context.Context, status, cursor string, limit int) ([]model.CallbackOut, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := 0
	if cursor != "" {
		for i, id := range m.order {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.CallbackOut{}
	var next string
	for i := start; i < len(m.order) && len(out) < limit; i++ {
		d := m.deliveries[m.order[i]]
		next = d.ID
		if status != "" && d.Status != status {
			continue
		}
		item := model.CallbackOut{
			ID: d.ID, RunID: d.RunID, EventType: d.EventType, URL: d.URL,
			Status: d.Status, Attempts: d.Attempts, LastError: d.LastError,
			ResponseCode: d.ResponseCode, DeliveredAt: d.DeliveredAt,
		}
		if d.Status == DeliveryPending || d.Status == DeliveryRetry {
			at := d.NextAttemptAt
			item.NextAttemptAt = &at
		}
		out = append(out, item)
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

// RetryCallback puts a delivery back in the queue, due now. Dead-lettered
// deliveries leave the dead-letter list.
func (m *Memory) RetryCallback(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil {
		return ErrNotFound
	}
	if d.Status == DeliveryFailed {
		for i, x := range m.dlq {
			if x == id {
				m.dlq = append(m.dlq[:i], m.dlq[i+1:]...)
				break
			}
		}
		d.Attempts = 0
	}
	d.Status = DeliveryPending
	d.NextAttemptAt = time.Now()
	return nil
}

// DeadLetters returns the ids of failed deliveries, oldest first.
func (m *Memory) DeadLetters() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dlq...)
}

func (m *Memory) GetSolverConfig(ctx context.Context) (*config.Solver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solverCfg == nil {
		return nil, nil
	}
	c := *m.solverCfg
	return &c, nil
}

func (m *Memory) SaveSolverConfig(ctx context.Context, cfg config.Solver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solverCfg = &cfg
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }
