package rql

import (
	"context"

	"github.com/nlstn/go-rql/internal/docfilter"
	"github.com/nlstn/go-rql/internal/memfilter"
	"github.com/nlstn/go-rql/internal/observability"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/sqlfilter"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/trace"
)

// MatchAllSQL is the fragment compiled for a builder without predicates.
const MatchAllSQL = sqlfilter.MatchAll

func (b *Builder) startCompile(backend string) (context.Context, trace.Span) {
	ctx, span := b.engine.obs.Tracer().StartCompile(b.ctx, backend, len(b.preds))
	b.engine.obs.Metrics().RecordCompile(ctx, backend)
	return ctx, span
}

func (b *Builder) compileFailed(ctx context.Context, span trace.Span, err error) {
	b.engine.recordError(ctx, span, observability.OpCompile, err)
}

// Match compiles the predicates into an in-memory test. Records are structs
// of the builder's shape, other structs read by field name, or maps keyed by
// field name. A builder without predicates matches every record.
func (b *Builder) Match() (func(record interface{}) bool, error) {
	if b.err != nil {
		return nil, b.err
	}
	ctx, span := b.startCompile(observability.BackendMemory)
	defer span.End()

	fn, err := memfilter.Compile(b.preds, b.shape)
	if err != nil {
		b.compileFailed(ctx, span, err)
		return nil, err
	}
	return fn, nil
}

// Compile is the typed form of Builder.Match.
func Compile[T any](b *Builder) (func(T) bool, error) {
	match, err := b.Match()
	if err != nil {
		return nil, err
	}
	return func(record T) bool {
		return match(record)
	}, nil
}

// Filter returns the items matching b, in their original order.
func Filter[T any](b *Builder, items []T) ([]T, error) {
	match, err := Compile[T](b)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// SQL compiles the predicates into a WHERE fragment and its positional
// parameters. dialect is sqlite, postgres or mysql; postgres uses $n
// placeholders, the others ?. Without predicates the fragment is "1=1".
func (b *Builder) SQL(dialect string) (string, []interface{}, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	d, err := sqlfilter.DialectFor(dialect)
	if err != nil {
		return "", nil, rqlerr.Usage("%v", err)
	}
	ctx, span := b.startCompile(observability.BackendSQL)
	defer span.End()

	where, params, err := sqlfilter.Compile(b.preds, d)
	if err != nil {
		b.compileFailed(ctx, span, err)
		return "", nil, err
	}
	return where, params, nil
}

// Columns returns the SQL columns of the projected fields.
func (b *Builder) Columns() []string {
	cols := make([]string, 0, len(b.projected))
	for _, name := range b.projected {
		cols = append(cols, b.column(name))
	}
	return cols
}

func (b *Builder) column(name string) string {
	if f, ok := b.shape.Lookup(name); ok {
		return f.Column
	}
	return name
}

// Document compiles the predicates into a document-store filter. Without
// predicates the filter is the empty document.
func (b *Builder) Document() (bson.D, error) {
	if b.err != nil {
		return nil, b.err
	}
	ctx, span := b.startCompile(observability.BackendDocument)
	defer span.End()

	filter, err := docfilter.Compile(b.preds)
	if err != nil {
		b.compileFailed(ctx, span, err)
		return nil, err
	}
	return filter, nil
}

// Projection returns the document projection of the projected fields, or nil
// when nothing is projected.
func (b *Builder) Projection() bson.D {
	keys := make([]string, 0, len(b.projected))
	for _, name := range b.projected {
		if f, ok := b.shape.Lookup(name); ok {
			keys = append(keys, f.DocKey)
			continue
		}
		keys = append(keys, name)
	}
	return docfilter.Projection(keys)
}

// DocumentJSON renders the document filter as relaxed extended JSON.
func (b *Builder) DocumentJSON() (string, error) {
	filter, err := b.Document()
	if err != nil {
		return "", err
	}
	return docfilter.ExtJSON(filter)
}
