// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"telegram-relay-bot/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	return newWithWriter(os.Stdout, cfg, dev)
}

func newWithWriter(w io.Writer, cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		base = zerolog.New(out).Level(level).With().Timestamp().Logger()
	} else {
		base = zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// keep first 100, then 1 every 100 thereafter
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxTraceID  ctxKey = "trace_id"
	ctxTgID     ctxKey = "tg_id"
	ctxUpdateID ctxKey = "update_id"
)

// With attaches the trace_id, tg_id and update_id found in ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v, ok := ctx.Value(ctxTraceID).(string); ok {
		l = l.Str("trace_id", v)
	}
	if v, ok := ctx.Value(ctxTgID).(int64); ok {
		l = l.Int64("tg_id", v)
	}
	if v, ok := ctx.Value(ctxUpdateID).(int); ok {
		l = l.Int("update_id", v)
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "RelayUseCase.Dispatch")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact hides message contents when not in dev; keep short/preview.
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	r := []rune(s)
	if len(r) <= 8 {
		return "***"
	}
	return string(r[:4]) + "..." + string(r[len(r)-2:])
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}
func WithTgID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxTgID, id)
}
func WithUpdateID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxUpdateID, id)
}
