package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanParse      = "rql.parse"
	SpanIntrospect = "rql.introspect"
	SpanCompile    = "rql.compile"
	SpanDBQuery    = "rql.db.query"
)

// Tracer opens the spans of parse, introspect, compile and database calls.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer named after the module on tp.
func NewTracer(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartSpan opens an arbitrary span.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (t *Tracer) startOp(ctx context.Context, name, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.StartSpan(ctx, name, append([]attribute.KeyValue{OperationAttr(op)}, attrs...)...)
}

// StartParse covers parsing and lowering of one query text.
func (t *Tracer) StartParse(ctx context.Context, query, shape string) (context.Context, trace.Span) {
	return t.startOp(ctx, SpanParse, OpParse, QueryAttr(query), ShapeAttr(shape))
}

// StartIntrospect covers turning a criteria object into predicates.
func (t *Tracer) StartIntrospect(ctx context.Context, criteriaType string) (context.Context, trace.Span) {
	return t.startOp(ctx, SpanIntrospect, OpIntrospect, attribute.String("rql.criteria", criteriaType))
}

// StartCompile covers one backend compilation.
func (t *Tracer) StartCompile(ctx context.Context, backend string, predicates int) (context.Context, trace.Span) {
	return t.startOp(ctx, SpanCompile, OpCompile, BackendAttr(backend), PredicateCountAttr(predicates))
}

// RecordError marks span as failed. A nil err is ignored.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// LoggerWithTrace adds the trace and span ids of ctx to logger, if ctx
// carries a recording span context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		LogFieldTraceID, sc.TraceID().String(),
		LogFieldSpanID, sc.SpanID().String(),
	)
}
