// Package logging builds the process logger: log/slog with an optional
// rotating file and trace/span ids taken from the request context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, encoding and destination.
type Config struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"` // empty writes to stdout
	MaxSize    int    `mapstructure:"max_size" validate:"gte=0"` // MB
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age" validate:"gte=0"` // days
	Compress   bool   `mapstructure:"compress"`
}

// TraceHandler adds trace_id and span_id to records logged with a context
// that carries a valid span.
type TraceHandler struct {
	slog.Handler
}

func (h TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return TraceHandler{h.Handler.WithAttrs(attrs)}
}

func (h TraceHandler) WithGroup(name string) slog.Handler {
	return TraceHandler{h.Handler.WithGroup(name)}
}

// New returns a logger tagged with service. Output goes to cfg.File through
// lumberjack rotation when set, stdout otherwise.
func New(service string, cfg Config) *slog.Logger {
	var w io.Writer = os.Stdout
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}
	return NewWriter(w, service, cfg)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, service string, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(TraceHandler{h}).With(slog.String("service", service))
}

// ParseLevel maps debug, info, warn and error; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
