// Package logger provides the structured, levelled logger built on log/slog.
//
// Setup selects the handler once at boot: human-readable text in dev,
// JSON in production, optionally fanned out to the MongoDB logs
// collection. WithCtx returns a logger pre-tagged with the request ID, so
// every log line from a handler is automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("card created", "card_id", card.ID)
//	// → time=... level=INFO msg="card created" request_id=a1b2c3d4 card_id=...
package logger

import (
	"context"
	"log/slog"
	"os"
)

// L is the process-wide logger. Defaults to a text handler until Setup runs.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Setup configures the global logger for the given environment.
// extra handlers (e.g. the Mongo handler) are fanned out via MultiHandler.
func Setup(production bool, extra ...slog.Handler) {
	var base slog.Handler
	if production {
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		base = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	} else {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		base = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	handler := base
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{base}, extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request logger injected by the Logger
// middleware, or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
