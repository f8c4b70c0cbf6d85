package api

import (
	"sync"
)

// AllRuns is the firehose topic: every run event is also published on it.
const AllRuns = "*"

// Run event types.
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

type SSEEvent struct {
	Type string
	Data map[string]any
}

type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SSEEvent]struct{} // runId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(runID string) chan SSEEvent {
	ch := make(chan SSEEvent, 8)
	b.mu.Lock()
	if b.subs[runID] == nil {
		b.subs[runID] = map[chan SSEEvent]struct{}{}
	}
	b.subs[runID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(runID string, ch chan SSEEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[runID]
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, runID)
	}
	close(ch)
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *Broker) Publish(runID string, evt SSEEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[runID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// publishRun sends evt to the run's topic and to the firehose.
func publishRun(b EventBroker, runID string, evt SSEEvent) {
	b.Publish(runID, evt)
	b.Publish(AllRuns, evt)
}
