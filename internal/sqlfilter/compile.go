// Package sqlfilter compiles a predicate list into a parameterized SQL WHERE
// fragment. Values are always bound as parameters, never inlined.
package sqlfilter

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-rql/internal/predicate"
)

// MatchAll is the fragment produced for an empty predicate list.
const MatchAll = "1=1"

// Compile renders preds joined by AND. Parameters are listed in placeholder
// order; an empty list yields MatchAll and no parameters.
func Compile(preds []predicate.Predicate, d Dialect) (string, []interface{}, error) {
	if len(preds) == 0 {
		return MatchAll, []interface{}{}, nil
	}

	b := &builder{dialect: d}
	conds := make([]string, 0, len(preds))
	for _, p := range preds {
		cond, err := b.condition(p)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
	}
	return strings.Join(conds, " AND "), b.params, nil
}

type builder struct {
	dialect Dialect
	params  []interface{}
}

func (b *builder) bind(v interface{}) string {
	b.params = append(b.params, v)
	return b.dialect.placeholder(len(b.params))
}

func (b *builder) condition(p predicate.Predicate) (string, error) {
	if !p.Operator.AcceptsLen(len(p.Values)) {
		return "", fmt.Errorf("%s on %s has %d values", p.Operator, p.Target.Name, len(p.Values))
	}
	col := b.dialect.QuoteIdent(p.Target.Column())

	switch p.Operator {
	case predicate.Equals:
		return fmt.Sprintf("%s = %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.NotEquals:
		return fmt.Sprintf("%s <> %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.LesserThan:
		return fmt.Sprintf("%s < %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.GreaterThan:
		return fmt.Sprintf("%s > %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.LesserThanOrEqual:
		return fmt.Sprintf("%s <= %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.GreaterThanOrEqual:
		return fmt.Sprintf("%s >= %s", col, b.bind(p.Values[0].Native())), nil
	case predicate.Between:
		lo := b.bind(p.Values[0].Native())
		hi := b.bind(p.Values[1].Native())
		return fmt.Sprintf("%s >= %s AND %s <= %s", col, lo, col, hi), nil
	case predicate.In, predicate.NotIn:
		placeholders := make([]string, len(p.Values))
		for i, v := range p.Values {
			placeholders[i] = b.bind(v.Native())
		}
		op := "IN"
		if p.Operator == predicate.NotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(placeholders, ", ")), nil
	case predicate.StartsWith:
		return b.pattern(col, b.dialect.match.prefixPattern(p.Values[0].Text())), nil
	case predicate.Contains:
		return b.pattern(col, b.dialect.match.substringPattern(p.Values[0].Text())), nil
	default:
		return "", fmt.Errorf("operator %s has no SQL form", p.Operator)
	}
}

func (b *builder) pattern(col, pattern string) string {
	return b.dialect.match.clause(col, b.bind(pattern))
}
