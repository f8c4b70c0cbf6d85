package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceIDsInjected(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "binrent", Config{Level: "info", Format: "json"})

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "solve")
	log.With("algorithm", "grasp").InfoContext(ctx, "solved")
	span.End()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "binrent", rec["service"])
	assert.Equal(t, "grasp", rec["algorithm"])
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "binrent", Config{Level: "warn", Format: "text"})
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
}
