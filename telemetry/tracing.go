package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skryldev/jobly/db"
)

const instrumentationName = "github.com/Skryldev/jobly/telemetry"

// QueryTracer implements db.Tracer with one client span per statement.
type QueryTracer struct {
	tracer trace.Tracer
}

// NewQueryTracer uses t, or the global provider's tracer when t is nil.
func NewQueryTracer(t trace.Tracer) *QueryTracer {
	if t == nil {
		t = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return &QueryTracer{tracer: t}
}

func (q *QueryTracer) StartSpan(ctx context.Context, query string, start time.Time) context.Context {
	ctx, span := q.tracer.Start(ctx, "db."+Verb(query),
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	// Arguments are never recorded: they include password hashes.
	span.SetAttributes(
		attribute.String("db.statement", query),
		attribute.String("component", "jobly/db"),
	)
	return ctx
}

func (q *QueryTracer) EndSpan(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil && !db.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Tracer returns the underlying tracer for HTTP middleware.
func (q *QueryTracer) Tracer() trace.Tracer { return q.tracer }

var _ db.Tracer = (*QueryTracer)(nil)
var _ db.MetricsCollector = (*QueryMetrics)(nil)
