// Package predicate holds the storage-independent filter model: an ordered
// list of typed predicates combined by logical AND.
package predicate

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
)

// Operator is the comparison or membership operator of a predicate.
type Operator = grammar.Operator

const (
	NotSet             = grammar.NotSet
	Equals             = grammar.Equals
	NotEquals          = grammar.NotEquals
	LesserThan         = grammar.LesserThan
	GreaterThan        = grammar.GreaterThan
	LesserThanOrEqual  = grammar.LesserThanOrEqual
	GreaterThanOrEqual = grammar.GreaterThanOrEqual
	StartsWith         = grammar.StartsWith
	Contains           = grammar.Contains
	Between            = grammar.Between
	In                 = grammar.In
	NotIn              = grammar.NotIn
)

// Target is a field reference resolved against a shape. Field is nil for
// untyped targets, in which case Kind is inferred from the values.
type Target struct {
	Name  string
	Kind  value.Kind
	Field *shape.Field
}

// Column returns the SQL column the target maps to.
func (t Target) Column() string {
	if t.Field != nil && t.Field.Column != "" {
		return t.Field.Column
	}
	return t.Name
}

// DocKey returns the document-store key the target maps to.
func (t Target) DocKey() string {
	if t.Field != nil && t.Field.DocKey != "" {
		return t.Field.DocKey
	}
	return t.Name
}

// RecordKey returns the map key used for untyped records.
func (t Target) RecordKey() string {
	if t.Field != nil && t.Field.JSONName != "" {
		return t.Field.JSONName
	}
	return t.Name
}

// Predicate is one resolved, typed filter condition. All values share the
// kind of Target.
type Predicate struct {
	Operator Operator
	Target   Target
	Values   []value.Value
}

// Equal reports structural equality: same operator, target and values.
func (p Predicate) Equal(o Predicate) bool {
	if p.Operator != o.Operator || p.Target.Name != o.Target.Name || p.Target.Kind != o.Target.Kind {
		return false
	}
	if len(p.Values) != len(o.Values) {
		return false
	}
	for i := range p.Values {
		if !p.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

func (p Predicate) String() string {
	parts := make([]string, 0, len(p.Values)+1)
	parts = append(parts, p.Target.Name)
	for _, v := range p.Values {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s(%s)", p.Operator, strings.Join(parts, ","))
}

// EqualLists reports whether a and b hold structurally equal predicates in the same order.
func EqualLists(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
