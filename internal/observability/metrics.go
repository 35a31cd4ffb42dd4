package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the RQL metric instruments.
type Metrics struct {
	parseCount      metric.Int64Counter
	parseDuration   metric.Float64Histogram
	compileCount    metric.Int64Counter
	errorCount      metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
}

type instrument struct {
	name, description, unit string
}

var (
	parseCountInstrument    = instrument{"rql.parse.count", "RQL texts parsed and lowered", "{query}"}
	parseDurationInstrument = instrument{"rql.parse.duration", "Time spent parsing and lowering RQL text", "ms"}
	compileCountInstrument  = instrument{"rql.compile.count", "Predicate lists compiled, by backend", "{compile}"}
	errorCountInstrument    = instrument{"rql.error.count", "RQL errors, by operation and kind", "{error}"}
	dbQueryInstrument       = instrument{"rql.db.query.duration", "Database queries filtered by RQL", "ms"}
)

func counter(meter metric.Meter, in instrument) metric.Int64Counter {
	c, err := meter.Int64Counter(in.name, metric.WithDescription(in.description), metric.WithUnit(in.unit))
	if err != nil {
		c, _ = meter.Int64Counter(in.name)
	}
	return c
}

func histogram(meter metric.Meter, in instrument) metric.Float64Histogram {
	h, err := meter.Float64Histogram(in.name, metric.WithDescription(in.description), metric.WithUnit(in.unit))
	if err != nil {
		h, _ = meter.Float64Histogram(in.name)
	}
	return h
}

// NewMetrics creates the RQL instruments on mp.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	return &Metrics{
		parseCount:      counter(meter, parseCountInstrument),
		parseDuration:   histogram(meter, parseDurationInstrument),
		compileCount:    counter(meter, compileCountInstrument),
		errorCount:      counter(meter, errorCountInstrument),
		dbQueryDuration: histogram(meter, dbQueryInstrument),
	}
}

// RecordParse records a completed parse.
func (m *Metrics) RecordParse(ctx context.Context, cacheHit bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool(AttrCacheHit, cacheHit))
	m.parseCount.Add(ctx, 1, attrs)
	m.parseDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordCompile records a compilation for backend.
func (m *Metrics) RecordCompile(ctx context.Context, backend string) {
	m.compileCount.Add(ctx, 1, metric.WithAttributes(BackendAttr(backend)))
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError(ctx context.Context, operation, kind string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(
		OperationAttr(operation),
		ErrorKindAttr(kind),
	))
}

// RecordDBQuery records the duration of a query against table.
func (m *Metrics) RecordDBQuery(ctx context.Context, table string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.sql.table", table))
	m.dbQueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
