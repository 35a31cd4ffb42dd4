package rql

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/nlstn/go-rql/internal/criteria"
	"github.com/nlstn/go-rql/internal/observability"
	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
)

// Predicate is one resolved, typed filter condition.
type Predicate = predicate.Predicate

// Builder accumulates predicates for one query. Builders are created per
// request and are not safe for concurrent mutation; once built they may be
// compiled from any goroutine.
//
// Like gorm.DB, a Builder keeps the first error raised while it is built.
// Later calls become no-ops and every compiler returns that error:
//
//	b := rql.For(&Product{}).
//		FromRql(r.URL.Query().Get("filter")).
//		Where("Active").Equals(true)
//	if err := b.Err(); err != nil {
//		// 400 Bad Request
//	}
type Builder struct {
	engine    *Engine
	ctx       context.Context
	shape     *shape.Shape
	preds     []predicate.Predicate
	projected []string
	err       error
}

// Create returns an empty, untyped builder on the default engine.
func Create() *Builder { return Default().Create() }

// For returns an empty builder bound to model's shape on the default engine.
// model is a struct value, a pointer to one, or a *Shape.
func For(model interface{}) *Builder { return Default().For(model) }

// FromRql returns an untyped builder holding the predicates of text.
func FromRql(text string) *Builder { return Default().Create().FromRql(text) }

// Create returns an empty, untyped builder. Field names are used as given and
// literal kinds are inferred.
func (e *Engine) Create() *Builder {
	return &Builder{engine: e, ctx: context.Background()}
}

// For returns an empty builder bound to model's shape.
func (e *Engine) For(model interface{}) *Builder {
	b := e.Create()
	s, err := shape.Analyze(model)
	if err != nil {
		b.err = rqlerr.Usage("%v", err)
		return b
	}
	b.shape = s
	return b
}

// WithContext sets the context used for spans and trace-enriched logging.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// Err returns the first error raised while building.
func (b *Builder) Err() error { return b.err }

// Shape returns the target shape, or nil for untyped builders.
func (b *Builder) Shape() *Shape { return b.shape }

// HasCriteria reports whether at least one predicate exists.
func (b *Builder) HasCriteria() bool { return len(b.preds) > 0 }

// Predicates returns a copy of the predicate list.
func (b *Builder) Predicates() []Predicate {
	return append([]Predicate(nil), b.preds...)
}

// ProjectedFields returns the field names selected by AutoProject or Project.
func (b *Builder) ProjectedFields() []string {
	return append([]string(nil), b.projected...)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// FromRql parses text and appends its predicates. Empty or whitespace-only
// text adds nothing, which keeps the builder match-all.
func (b *Builder) FromRql(text string) *Builder {
	if b.err != nil || strings.TrimSpace(text) == "" {
		return b
	}
	preds, err := b.engine.parse(b.ctx, text, b.shape)
	if err != nil {
		b.fail(err)
		return b
	}
	b.preds = append(b.preds, preds...)
	return b
}

// Introspect appends one predicate per populated property of a criteria
// struct. See CriteriaDescriptor for the tag syntax.
func (b *Builder) Introspect(c interface{}) *Builder {
	if b.err != nil {
		return b
	}
	ctx, span := b.engine.obs.Tracer().StartIntrospect(b.ctx, fmt.Sprintf("%T", c))
	defer span.End()

	preds, err := criteria.Introspect(c, b.shape)
	if err != nil {
		b.engine.recordError(ctx, span, observability.OpIntrospect, err)
		b.fail(err)
		return b
	}

	log := observability.LoggerWithTrace(ctx, b.engine.log())
	log.Debug("rql introspect", "criteria", fmt.Sprintf("%T", c), "predicates", len(preds))
	if op, ok := c.(interface {
		IsOverposted() bool
		OverpostedFieldNames() []string
	}); ok && op.IsOverposted() {
		log.Warn("rql overposted", "criteria", fmt.Sprintf("%T", c), "fields", op.OverpostedFieldNames())
	}

	b.preds = append(b.preds, preds...)
	return b
}

// AutoProject selects every projectable field of the shape: scalars, not
// nested objects or collections. Untyped builders project nothing.
func (b *Builder) AutoProject() *Builder {
	if b.shape == nil {
		return b
	}
	b.projected = b.projected[:0]
	for i := range b.shape.Fields {
		if f := &b.shape.Fields[i]; f.Projectable() {
			b.projected = append(b.projected, f.Name)
		}
	}
	return b
}

// Project selects the named fields. Unknown or non-projectable names are
// resolution errors on typed builders.
func (b *Builder) Project(fields ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, name := range fields {
		if b.shape != nil {
			f, ok := b.shape.Lookup(name)
			if !ok || !f.Projectable() {
				b.fail(rqlerr.Resolution("", -1, name, b.shape.Name))
				return b
			}
			name = f.Name
		}
		if !containsString(b.projected, name) {
			b.projected = append(b.projected, name)
		}
	}
	return b
}

// buildFailed records errors raised by the fluent API, which has no span.
func (b *Builder) buildFailed(err error) {
	b.engine.obs.Metrics().RecordError(b.ctx, observability.OpBuild, rqlerr.KindOf(err).String())
	b.fail(err)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Where begins a predicate on field. The returned Clause must be finished
// with exactly one terminal call such as Equals or In.
func (b *Builder) Where(field string) *Clause {
	c := &Clause{b: b}
	if b.err != nil {
		c.done = true
		return c
	}
	if field == "" {
		b.fail(rqlerr.Usage("field name cannot be empty"))
		c.done = true
		return c
	}
	target, err := predicate.Resolve(b.shape, field)
	if err != nil {
		b.buildFailed(err)
		c.done = true
		return c
	}
	c.target = target
	return c
}

// And is an alias of Where that reads better in chains.
func (b *Builder) And(field string) *Clause { return b.Where(field) }

// Clause is a pending predicate on a selected field.
type Clause struct {
	b      *Builder
	target predicate.Target
	done   bool
}

// Equals appends field = v.
func (c *Clause) Equals(v interface{}) *Builder { return c.finish(predicate.Equals, v) }

// NotEquals appends field <> v.
func (c *Clause) NotEquals(v interface{}) *Builder { return c.finish(predicate.NotEquals, v) }

// LesserThan appends field < v.
func (c *Clause) LesserThan(v interface{}) *Builder { return c.finish(predicate.LesserThan, v) }

// GreaterThan appends field > v.
func (c *Clause) GreaterThan(v interface{}) *Builder { return c.finish(predicate.GreaterThan, v) }

// LesserThanOrEqual appends field <= v.
func (c *Clause) LesserThanOrEqual(v interface{}) *Builder {
	return c.finish(predicate.LesserThanOrEqual, v)
}

// GreaterThanOrEqual appends field >= v.
func (c *Clause) GreaterThanOrEqual(v interface{}) *Builder {
	return c.finish(predicate.GreaterThanOrEqual, v)
}

// StartsWith appends an ordinal prefix match.
func (c *Clause) StartsWith(prefix string) *Builder { return c.finish(predicate.StartsWith, prefix) }

// Contains appends an ordinal substring match.
func (c *Clause) Contains(sub string) *Builder { return c.finish(predicate.Contains, sub) }

// Between appends lo <= field <= hi.
func (c *Clause) Between(lo, hi interface{}) *Builder { return c.finish(predicate.Between, lo, hi) }

// In appends a membership test. A single slice argument is expanded.
func (c *Clause) In(values ...interface{}) *Builder {
	return c.finish(predicate.In, expand(values)...)
}

// NotIn appends the complement of In over the same values.
func (c *Clause) NotIn(values ...interface{}) *Builder {
	return c.finish(predicate.NotIn, expand(values)...)
}

func (c *Clause) finish(op predicate.Operator, args ...interface{}) *Builder {
	if c == nil || c.b == nil {
		panic(rqlerr.Usage("%s called without a preceding Where or And", op))
	}
	b := c.b
	if c.done {
		if b.err == nil {
			b.fail(rqlerr.Usage("clause on field %q already has an operator", c.target.Name))
		}
		return b
	}
	c.done = true

	p, err := predicate.Build(op, c.target, args)
	if err != nil {
		b.buildFailed(err)
		return b
	}
	b.preds = append(b.preds, p)
	return b
}

func expand(values []interface{}) []interface{} {
	if len(values) != 1 || values[0] == nil {
		return values
	}
	rv := reflect.ValueOf(values[0])
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return values
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
