package rql

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/observability"
	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultParseCacheSize is the number of parsed queries an Engine keeps.
const DefaultParseCacheSize = 256

// Engine carries the configuration shared by builders: logging,
// observability, the parse cache and grammar limits. An Engine is safe for
// concurrent use; the builders it creates are not.
type Engine struct {
	logger    *slog.Logger
	obs       *observability.Config
	cache     *grammar.Cache
	maxValues int
}

type engineOptions struct {
	logger    *slog.Logger
	obsOpts   []observability.Option
	cacheSize int
	maxValues int
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the logger for debug events. nil uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithTracerProvider enables tracing of parse and compile calls.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *engineOptions) {
		o.obsOpts = append(o.obsOpts, observability.WithTracerProvider(tp))
	}
}

// WithMeterProvider enables parse, compile and error metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *engineOptions) {
		o.obsOpts = append(o.obsOpts, observability.WithMeterProvider(mp))
	}
}

// WithDBTracing traces the queries of databases registered with
// Engine.InstrumentDB.
func WithDBTracing() Option {
	return func(o *engineOptions) {
		o.obsOpts = append(o.obsOpts, observability.WithDBTracing())
	}
}

// WithParseCacheSize bounds the parse cache. Zero disables caching.
func WithParseCacheSize(size int) Option {
	return func(o *engineOptions) {
		o.cacheSize = size
	}
}

// WithMaxValues rejects in and nin criteria with more than n values as
// grammar errors. Zero means no limit.
func WithMaxValues(n int) Option {
	return func(o *engineOptions) {
		o.maxValues = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := engineOptions{cacheSize: DefaultParseCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		logger:    o.logger,
		obs:       observability.NewConfig(o.obsOpts...),
		cache:     grammar.NewCache(o.cacheSize, o.maxValues),
		maxValues: o.maxValues,
	}
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the engine used by the package-level functions.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// parse parses and lowers text against s, recording spans and metrics.
func (e *Engine) parse(ctx context.Context, text string, s *shape.Shape) ([]predicate.Predicate, error) {
	start := time.Now()
	ctx, span := e.obs.Tracer().StartParse(ctx, text, shapeName(s))
	defer span.End()

	node, hit, err := e.cache.Parse(text)
	if err == nil {
		var preds []predicate.Predicate
		preds, err = predicate.Lower(node, s, text)
		if err == nil {
			e.obs.Metrics().RecordParse(ctx, hit, time.Since(start))
			span.SetAttributes(observability.PredicateCountAttr(len(preds)))
			observability.LoggerWithTrace(ctx, e.log()).Debug("rql parse",
				"query", text,
				"shape", shapeName(s),
				"predicates", len(preds),
				"cache_hit", hit)
			return preds, nil
		}
	}

	e.recordError(ctx, span, observability.OpParse, err)
	return nil, err
}

func (e *Engine) recordError(ctx context.Context, span trace.Span, op string, err error) {
	e.obs.Tracer().RecordError(span, err)
	e.obs.Metrics().RecordError(ctx, op, rqlerr.KindOf(err).String())
}

func shapeName(s *shape.Shape) string {
	if s == nil {
		return ""
	}
	return s.Name
}
