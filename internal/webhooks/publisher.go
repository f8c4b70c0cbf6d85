package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"binrent/internal/store"
)

// EventRunCompleted is posted to a run's callback URL when the solve ends.
const EventRunCompleted = "run.completed"

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit enqueues one delivery of the event for the run. A blank url is a no-op.
func (p *Publisher) Emit(ctx context.Context, runID, eventType, url, secret string, data any) (string, error) {
	if url == "" {
		return "", nil
	}
	payload := map[string]any{
		"id":    "evt_" + uuid.NewString(),
		"type":  eventType,
		"runId": runID,
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"data":  data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return p.Store.EnqueueCallback(ctx, runID, eventType, url, secret, body)
}
