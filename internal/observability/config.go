package observability

import (
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Config is the resolved instrumentation of one engine. Missing providers are
// replaced by no-op providers, so Tracer and Metrics never return nil.
type Config struct {
	dbTracing bool
	tracer    *Tracer
	metrics   *Metrics
}

type settings struct {
	tp        trace.TracerProvider
	mp        metric.MeterProvider
	dbTracing bool
}

// Option configures a Config.
type Option func(*settings)

// WithTracerProvider sets the provider for rql.* spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) { s.tp = tp }
}

// WithMeterProvider sets the provider for rql.* instruments.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) { s.mp = mp }
}

// WithDBTracing makes RegisterGORMCallbacks install its query callbacks.
func WithDBTracing() Option {
	return func(s *settings) { s.dbTracing = true }
}

var disabled = NewConfig()

// NewConfig resolves opts into a Config.
func NewConfig(opts ...Option) *Config {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	cfg := &Config{dbTracing: s.dbTracing}
	if s.tp == nil {
		s.tp = tracenoop.NewTracerProvider()
	}
	if s.mp == nil {
		s.mp = metricnoop.NewMeterProvider()
	}
	cfg.tracer = NewTracer(s.tp)
	cfg.metrics = NewMetrics(s.mp)
	return cfg
}

// Tracer returns the span factory. A nil Config yields a no-op tracer.
func (c *Config) Tracer() *Tracer {
	if c == nil {
		return disabled.tracer
	}
	return c.tracer
}

// Metrics returns the instruments. A nil Config yields no-op instruments.
func (c *Config) Metrics() *Metrics {
	if c == nil {
		return disabled.metrics
	}
	return c.metrics
}

// DBTracing reports whether database query callbacks should be registered.
func (c *Config) DBTracing() bool {
	return c != nil && c.dbTracing
}
