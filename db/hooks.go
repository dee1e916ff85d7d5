package db

import (
	"context"
	"log/slog"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook
// ─────────────────────────────────────────────────────────────────────────────

// Hook is called around every statement execution.
//
// Implementations must be goroutine-safe and should not block. Panics are
// recovered by the hook chain and logged.
type Hook interface {
	// BeforeQuery runs immediately before the statement reaches the driver.
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery runs after the driver returns. err is the already mapped
	// error handed back to the caller.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		safeBeforeQuery(h, ctx, query, args)
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		safeAfterQuery(h, ctx, query, args, d, err)
	}
}

func safeBeforeQuery(h Hook, ctx context.Context, query string, args []any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("jobly/db: hook panic in BeforeQuery", "panic", r)
		}
	}()
	h.BeforeQuery(ctx, query, args)
}

func safeAfterQuery(h Hook, ctx context.Context, query string, args []any, d time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("jobly/db: hook panic in AfterQuery", "panic", r)
		}
	}()
	h.AfterQuery(ctx, query, args, d, err)
}

// ── Logging hook ─────────────────────────────────────────────────────────────

// LogHookConfig configures the structured logging hook.
type LogHookConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// SlowQueryThreshold logs a warning above this duration. Zero disables it.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters. Leave off outside development:
	// user updates bind password hashes.
	LogArgs bool
}

// NewLogHook returns a Hook that logs every statement through slog.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{cfg: cfg, logger: logger}
}

type logHook struct {
	cfg    LogHookConfig
	logger *slog.Logger
}

func (h *logHook) BeforeQuery(_ context.Context, _ string, _ []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	// Not-found is an expected outcome for lookups by key.
	if err != nil && !IsNotFound(err) {
		h.logger.ErrorContext(ctx, "jobly/db: query error", append(attrs, slog.Any("error", err))...)
		return
	}

	if h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold {
		h.logger.WarnContext(ctx, "jobly/db: slow query", attrs...)
		return
	}

	h.logger.DebugContext(ctx, "jobly/db: query", attrs...)
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ── Metrics hook ─────────────────────────────────────────────────────────────

// MetricsCollector receives one observation per statement.
type MetricsCollector interface {
	RecordQuery(query string, duration time.Duration, success bool)
}

// NewMetricsHook returns a Hook that reports to a MetricsCollector.
func NewMetricsHook(collector MetricsCollector) Hook {
	return &metricsHook{c: collector}
}

type metricsHook struct{ c MetricsCollector }

func (h *metricsHook) BeforeQuery(_ context.Context, _ string, _ []any) {}
func (h *metricsHook) AfterQuery(_ context.Context, query string, _ []any, d time.Duration, err error) {
	h.c.RecordQuery(query, d, err == nil || IsNotFound(err))
}

// ── Tracing hook ─────────────────────────────────────────────────────────────

// Tracer records one span per statement. The hook only learns the outcome
// after the driver returns, so the span is opened retroactively at start.
type Tracer interface {
	StartSpan(ctx context.Context, query string, start time.Time) context.Context
	EndSpan(ctx context.Context, err error)
}

// NewTracingHook returns a Hook wrapping a Tracer.
func NewTracingHook(t Tracer) Hook { return &tracingHook{t: t} }

type tracingHook struct{ t Tracer }

func (h *tracingHook) BeforeQuery(_ context.Context, _ string, _ []any) {}
func (h *tracingHook) AfterQuery(ctx context.Context, query string, _ []any, d time.Duration, err error) {
	spanCtx := h.t.StartSpan(ctx, query, time.Now().Add(-d))
	h.t.EndSpan(spanCtx, err)
}
