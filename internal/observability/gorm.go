package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const querySpanKey = "rql:query_span"

type querySpan struct {
	span  trace.Span
	start time.Time
}

// RegisterGORMCallbacks wraps gorm's query and row callbacks in rql.db.query
// spans and records their duration. It does nothing unless cfg has DB tracing.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if !cfg.DBTracing() {
		return nil
	}

	tracer := cfg.Tracer()

	query := db.Callback().Query()
	if err := query.Before("gorm:query").Register("rql:before_query", startQuery(tracer)); err != nil {
		return err
	}
	if err := query.After("gorm:query").Register("rql:after_query", endQuery(cfg)); err != nil {
		return err
	}

	row := db.Callback().Row()
	if err := row.Before("gorm:row").Register("rql:before_row", startQuery(tracer)); err != nil {
		return err
	}
	return row.After("gorm:row").Register("rql:after_row", endQuery(cfg))
}

func startQuery(tracer *Tracer) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, span := tracer.StartSpan(ctx, SpanDBQuery, attribute.String("db.system", db.Dialector.Name()))
		db.Statement.Context = ctx
		db.InstanceSet(querySpanKey, querySpan{span: span, start: time.Now()})
	}
}

func endQuery(cfg *Config) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(querySpanKey)
		if !ok {
			return
		}
		qs, ok := v.(querySpan)
		if !ok {
			return
		}
		defer qs.span.End()

		qs.span.SetAttributes(
			attribute.String("db.sql.table", db.Statement.Table),
			attribute.Int64("db.rows_affected", db.RowsAffected),
		)
		cfg.Tracer().RecordError(qs.span, db.Error)
		cfg.Metrics().RecordDBQuery(db.Statement.Context, db.Statement.Table, time.Since(qs.start))
	}
}
