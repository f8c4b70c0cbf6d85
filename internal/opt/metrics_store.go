package opt

import (
	"sync"
	"time"
)

// Metrics is the per-algorithm summary kept for the admin API.
type Metrics struct {
	Runs          int
	Infeasible    int
	LastStats     Stats
	LastElapsed   time.Duration
	TotalElapsed  time.Duration
	BestObjective float64 // lowest feasible objective seen, or +Inf
}

var (
	mu    sync.Mutex
	store = map[string]Metrics{}
)

// RecordMetrics folds one result into the algorithm's summary.
func RecordMetrics(algo string, r Result) {
	mu.Lock()
	defer mu.Unlock()
	m, ok := store[algo]
	if !ok {
		m.BestObjective = r.Objective
	} else if r.Objective < m.BestObjective {
		m.BestObjective = r.Objective
	}
	m.Runs++
	if !r.Feasible {
		m.Infeasible++
	}
	m.LastStats = r.Stats
	m.LastElapsed = r.Elapsed
	m.TotalElapsed += r.Elapsed
	store[algo] = m
}

// GetMetrics returns a copy of every summary.
func GetMetrics() map[string]Metrics {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Metrics, len(store))
	for k, v := range store {
		out[k] = v
	}
	return out
}

// ResetMetrics clears the store.
func ResetMetrics() {
	mu.Lock()
	store = map[string]Metrics{}
	mu.Unlock()
}
