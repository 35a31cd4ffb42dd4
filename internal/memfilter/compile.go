// Package memfilter compiles a predicate list into a function evaluated
// against in-memory records.
package memfilter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
)

// Func reports whether a record matches. Records are structs, pointers to
// structs, or map[string]any.
type Func func(record interface{}) bool

// All matches every record.
func All(interface{}) bool { return true }

type test func(value.Value) bool

type compiled struct {
	target predicate.Target
	goName string
	index  []int
	test   test
}

// Compile returns a Func that is true iff every predicate holds. Predicates
// are evaluated left to right and evaluation stops at the first failure. A
// record whose field is nil or missing fails every predicate on that field.
func Compile(preds []predicate.Predicate, s *shape.Shape) (Func, error) {
	if len(preds) == 0 {
		return All, nil
	}

	steps := make([]compiled, len(preds))
	for i, p := range preds {
		t, err := testFor(p)
		if err != nil {
			return nil, err
		}
		steps[i] = compiled{target: p.Target, test: t}
		if f := p.Target.Field; f != nil {
			steps[i].goName = f.GoName
			steps[i].index = f.Index
		}
	}

	var structType reflect.Type
	if s.Typed() {
		structType = s.Type
	}

	return func(record interface{}) bool {
		rv := indirect(reflect.ValueOf(record))
		if !rv.IsValid() {
			return false
		}
		for i := range steps {
			step := &steps[i]
			fv, ok := step.lookup(rv, structType)
			if !ok {
				return false
			}
			var enum *value.Enum
			if step.target.Field != nil {
				enum = step.target.Field.Enum
			}
			v, err := value.FromReflect(step.target.Kind, fv, enum)
			if err != nil || !step.test(v) {
				return false
			}
		}
		return true
	}, nil
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func (c *compiled) lookup(rv reflect.Value, structType reflect.Type) (reflect.Value, bool) {
	switch rv.Kind() {
	case reflect.Struct:
		if c.index != nil && rv.Type() == structType {
			return fieldByIndex(rv, c.index)
		}
		name := c.goName
		if name == "" {
			name = c.target.Name
		}
		fv := rv.FieldByName(name)
		return fv, fv.IsValid()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		for _, key := range []string{c.target.RecordKey(), c.target.Name} {
			fv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if fv.IsValid() {
				return fv, true
			}
		}
	}
	return reflect.Value{}, false
}

func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

func testFor(p predicate.Predicate) (test, error) {
	if !p.Operator.AcceptsLen(len(p.Values)) {
		return nil, fmt.Errorf("%s on %s has %d values", p.Operator, p.Target.Name, len(p.Values))
	}
	vals := p.Values

	switch p.Operator {
	case predicate.Equals:
		return func(v value.Value) bool { return v.Equal(vals[0]) }, nil
	case predicate.NotEquals:
		return func(v value.Value) bool {
			_, ok := v.Compare(vals[0])
			return ok && !v.Equal(vals[0])
		}, nil
	case predicate.LesserThan:
		return ordered(vals[0], func(c int) bool { return c < 0 }), nil
	case predicate.GreaterThan:
		return ordered(vals[0], func(c int) bool { return c > 0 }), nil
	case predicate.LesserThanOrEqual:
		return ordered(vals[0], func(c int) bool { return c <= 0 }), nil
	case predicate.GreaterThanOrEqual:
		return ordered(vals[0], func(c int) bool { return c >= 0 }), nil
	case predicate.StartsWith:
		prefix := vals[0].Text()
		return func(v value.Value) bool { return v.Kind() == value.Text && strings.HasPrefix(v.Text(), prefix) }, nil
	case predicate.Contains:
		sub := vals[0].Text()
		return func(v value.Value) bool { return v.Kind() == value.Text && strings.Contains(v.Text(), sub) }, nil
	case predicate.Between:
		lo, hi := vals[0], vals[1]
		return func(v value.Value) bool {
			a, okA := v.Compare(lo)
			b, okB := v.Compare(hi)
			return okA && okB && a >= 0 && b <= 0
		}, nil
	case predicate.In:
		return func(v value.Value) bool { return member(v, vals) }, nil
	case predicate.NotIn:
		return func(v value.Value) bool {
			if _, ok := v.Compare(vals[0]); !ok {
				return false
			}
			return !member(v, vals)
		}, nil
	default:
		return nil, fmt.Errorf("operator %s cannot be evaluated", p.Operator)
	}
}

func ordered(bound value.Value, accept func(int) bool) test {
	return func(v value.Value) bool {
		c, ok := v.Compare(bound)
		return ok && accept(c)
	}
}

func member(v value.Value, set []value.Value) bool {
	for _, s := range set {
		if v.Equal(s) {
			return true
		}
	}
	return false
}
