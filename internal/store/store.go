package store

import (
	"context"
	"errors"
	"time"

	"binrent/internal/config"
	"binrent/internal/model"
)

// Store is the run registry used by the API server.
type Store interface {
	// Runs
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, error)
	ListRuns(ctx context.Context, status, cursor string, limit int) (items []model.Run, nextCursor string, err error)

	// Completion callbacks
	EnqueueCallback(ctx context.Context, runID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueCallbacks(ctx context.Context, limit int) ([]CallbackDelivery, error)
	MarkCallback(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailCallback(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListCallbacks(ctx context.Context, status, cursor string, limit int) ([]model.CallbackOut, string, error)
	RetryCallback(ctx context.Context, id string) error

	// Solver defaults overlay; nil when never saved.
	GetSolverConfig(ctx context.Context) (*config.Solver, error)
	SaveSolverConfig(ctx context.Context, cfg config.Solver) error

	Ping(ctx context.Context) error
}

// ErrNotFound is returned when a run or delivery does not exist.
var ErrNotFound = errors.New("not found")
