package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"binrent/internal/config"
	"binrent/internal/metrics"
	"binrent/internal/store"
)

// Worker polls the store for due callbacks and POSTs them.
type Worker struct {
	Store       store.Store
	HTTP        *http.Client
	Log         *slog.Logger
	Interval    time.Duration
	MaxAttempts int
	Stop        chan struct{}
}

func NewWorker(s store.Store, cfg config.Callbacks, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		Store:       s,
		HTTP:        &http.Client{Timeout: cfg.Timeout},
		Log:         log.With("component", "callbacks"),
		Interval:    cfg.Interval,
		MaxAttempts: cfg.MaxAttempts,
		Stop:        make(chan struct{}),
	}
}

func (w *Worker) Start() {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	items, err := w.Store.FetchDueCallbacks(ctx, 50)
	if err != nil {
		w.Log.Error("fetch due callbacks", "err", err)
		return
	}
	for _, it := range items {
		w.deliver(ctx, it)
	}
}

func (w *Worker) deliver(ctx context.Context, it store.CallbackDelivery) {
	start := time.Now()
	code, err := w.post(ctx, it)
	latency := int(time.Since(start).Milliseconds())
	success := err == nil && code >= 200 && code < 300

	lastErr := ""
	switch {
	case err != nil:
		lastErr = err.Error()
	case !success:
		lastErr = fmt.Sprintf("unexpected status %d", code)
	}

	status := store.DeliveryDelivered
	switch {
	case success:
		err = w.Store.MarkCallback(ctx, it.ID, true, nil, "", code, latency)
	case it.Attempts+1 >= w.MaxAttempts:
		status = store.DeliveryFailed
		err = w.Store.FailCallback(ctx, it.ID, lastErr, code, latency)
		w.Log.Warn("callback dead-lettered", "id", it.ID, "run_id", it.RunID, "attempts", it.Attempts+1, "err", lastErr)
	default:
		status = store.DeliveryRetry
		next := time.Now().Add(nextBackoff(it.Attempts))
		err = w.Store.MarkCallback(ctx, it.ID, false, &next, lastErr, code, latency)
		w.Log.Debug("callback retry scheduled", "id", it.ID, "next", next, "err", lastErr)
	}
	if err != nil {
		w.Log.Error("record callback outcome", "id", it.ID, "err", err)
	}
	metrics.CallbackDeliveries.WithLabelValues(it.EventType, status).Inc()
	metrics.CallbackLatency.WithLabelValues(it.EventType, status).Observe(float64(latency))
}

func (w *Worker) post(ctx context.Context, it store.CallbackDelivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", it.EventType)
	if it.Secret != "" {
		ts, sig := Sign(it.Secret, it.Payload, time.Now())
		req.Header.Set(TimestampHeader, ts)
		req.Header.Set(SignatureHeader, sig)
	}
	resp, err := w.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
