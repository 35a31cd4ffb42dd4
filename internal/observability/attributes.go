// Package observability provides OpenTelemetry-based instrumentation for the RQL engine.
//
// It supports tracing of parse and compile calls, metrics collection, and
// trace-enriched structured logging.
//
// All observability features are opt-in. When not configured, no-op implementations
// are used with zero performance overhead.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-rql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-rql"
)

// RQL semantic attribute keys.
const (
	AttrQuery          = "rql.query"
	AttrBackend        = "rql.backend"
	AttrShape          = "rql.shape"
	AttrPredicateCount = "rql.predicate.count"
	AttrCacheHit       = "rql.cache.hit"
	AttrErrorKind      = "rql.error.kind"
	AttrOperation      = "rql.operation"
)

// Backend names for the rql.backend attribute.
const (
	BackendMemory   = "memory"
	BackendSQL      = "sql"
	BackendDocument = "document"
)

// Operation names for the rql.operation attribute.
const (
	OpParse      = "parse"
	OpBuild      = "build"
	OpIntrospect = "introspect"
	OpCompile    = "compile"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldTraceID = "trace_id"
	LogFieldSpanID  = "span_id"
)

// QueryAttr creates an attribute for the RQL text.
func QueryAttr(query string) attribute.KeyValue {
	return attribute.String(AttrQuery, query)
}

// BackendAttr creates an attribute for the compiler backend.
func BackendAttr(backend string) attribute.KeyValue {
	return attribute.String(AttrBackend, backend)
}

// ShapeAttr creates an attribute for the target shape name.
func ShapeAttr(name string) attribute.KeyValue {
	return attribute.String(AttrShape, name)
}

// PredicateCountAttr creates an attribute for the number of predicates.
func PredicateCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrPredicateCount, n)
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// ErrorKindAttr creates an attribute for the error taxonomy kind.
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}
