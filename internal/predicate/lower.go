package predicate

import (
	"errors"
	"fmt"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
)

// Resolve looks name up on s. A nil shape yields an untyped target.
// The returned error is a Resolution error without query text.
func Resolve(s *shape.Shape, name string) (Target, error) {
	if s == nil {
		return Target{Name: name}, nil
	}
	f, ok := s.Lookup(name)
	if !ok || !f.Filterable() {
		return Target{}, rqlerr.Resolution("", -1, name, s.Name)
	}
	return Target{Name: f.Name, Kind: f.Kind, Field: f}, nil
}

// Lower resolves and coerces a parsed tree into a flat predicate list.
// Nested and groups are flattened in order. or groups are accepted only when
// they reduce to a single child; anything else is a Grammar error. Errors
// carry text.
func Lower(node grammar.Node, s *shape.Shape, text string) ([]Predicate, error) {
	var criteria []*grammar.Criterion
	if err := flatten(node, text, &criteria); err != nil {
		return nil, err
	}

	preds := make([]Predicate, 0, len(criteria))
	for _, c := range criteria {
		p, err := lowerCriterion(c, s, text)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func flatten(n grammar.Node, text string, out *[]*grammar.Criterion) error {
	switch n := n.(type) {
	case *grammar.Criterion:
		*out = append(*out, n)
		return nil
	case *grammar.Group:
		if n.Combinator == grammar.Or {
			for _, child := range n.Children {
				if grammar.IsEmpty(child) {
					// or(x, ()) matches everything.
					return nil
				}
			}
			if len(n.Children) > 1 {
				return rqlerr.Grammar(text, n.Pos, text[n.Pos:n.End], "or groups are not supported")
			}
		}
		for _, child := range n.Children {
			if err := flatten(child, text, out); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unexpected node %T", n)
	}
}

func lowerCriterion(c *grammar.Criterion, s *shape.Shape, text string) (Predicate, error) {
	target, err := Resolve(s, c.Field)
	if err != nil {
		return Predicate{}, rqlerr.Resolution(text, c.FieldPos, c.Field, s.Name)
	}

	if target.Field == nil {
		return lowerUntyped(c, target, text)
	}

	if err := checkOperator(c.Operator, target); err != nil {
		return Predicate{}, rqlerr.Coercion(text, c.FieldPos, c.Field, err)
	}

	values := make([]value.Value, len(c.Literals))
	for i, lit := range c.Literals {
		v, err := value.Parse(target.Kind, lit.Text, target.Field.Enum)
		if err != nil {
			return Predicate{}, rqlerr.Coercion(text, lit.Pos, lit.Text, err)
		}
		values[i] = v
	}
	return Predicate{Operator: c.Operator, Target: target, Values: values}, nil
}

// checkOperator rejects operators a typed field cannot support. Textual
// labels are stored by name and have no order.
func checkOperator(op Operator, target Target) error {
	if op.IsPattern() && target.Kind != value.Text {
		return fmt.Errorf("%s requires a text field, %s is %s", op, target.Name, target.Kind)
	}
	if op.IsOrdering() && target.Kind == value.Label && target.Field.Enum != nil && target.Field.Enum.Textual {
		return fmt.Errorf("%s cannot order %s: labels of %s are not ordered", op, target.Name, target.Field.Enum.Name)
	}
	return nil
}

// lowerUntyped infers literal kinds. Integer and Decimal literals mixed in one
// criterion widen to Decimal; any other mix, and every pattern operator, falls
// back to Text.
func lowerUntyped(c *grammar.Criterion, target Target, text string) (Predicate, error) {
	values := make([]value.Value, len(c.Literals))
	for i, lit := range c.Literals {
		values[i] = value.Infer(lit.Text, lit.Quoted)
	}

	kinds := make([]value.Kind, len(values))
	for i, v := range values {
		kinds[i] = v.Kind()
	}
	kind := unify(kinds)
	if c.Operator.IsPattern() {
		kind = value.Text
	}
	for i, lit := range c.Literals {
		if values[i].Kind() == kind {
			continue
		}
		v, err := value.Parse(kind, lit.Text, nil)
		if err != nil {
			return Predicate{}, rqlerr.Coercion(text, lit.Pos, lit.Text, err)
		}
		values[i] = v
	}

	target.Kind = kind
	return Predicate{Operator: c.Operator, Target: target, Values: values}, nil
}

func unify(kinds []value.Kind) value.Kind {
	if len(kinds) == 0 {
		return value.Invalid
	}
	kind := kinds[0]
	for _, k := range kinds[1:] {
		switch {
		case k == kind:
		case isNumeric(k) && isNumeric(kind):
			kind = value.Decimal
		default:
			return value.Text
		}
	}
	return kind
}

func isNumeric(k value.Kind) bool {
	return k == value.Integer || k == value.Decimal
}

// Build creates a predicate from native Go arguments, as supplied by the
// fluent builder. Errors carry the field name as fragment and no query text.
// A nil argument is a Usage error.
func Build(op Operator, target Target, args []interface{}) (Predicate, error) {
	if !op.AcceptsLen(len(args)) {
		return Predicate{}, rqlerr.Usage("%s on field %q takes %s, got %d", op, target.Name, arityText(op), len(args))
	}

	kind := target.Kind
	var enum *value.Enum
	if target.Field != nil {
		enum = target.Field.Enum
		if err := checkOperator(op, target); err != nil {
			return Predicate{}, rqlerr.Coercion("", -1, target.Name, err)
		}
	} else {
		kinds := make([]value.Kind, len(args))
		for i, arg := range args {
			kinds[i] = value.KindOf(arg)
			if kinds[i] == value.Invalid {
				return Predicate{}, nullOrUnsupported(op, target, arg)
			}
		}
		kind = unify(kinds)
		if op.IsPattern() {
			kind = value.Text
		}
	}

	values := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := coerceArg(kind, arg, enum)
		if errors.Is(err, value.ErrNil) {
			return Predicate{}, rqlerr.Usage("%s on field %q: value %d is nil", op, target.Name, i)
		}
		if err != nil {
			return Predicate{}, rqlerr.Coercion("", -1, target.Name, err)
		}
		values[i] = v
	}

	target.Kind = kind
	return Predicate{Operator: op, Target: target, Values: values}, nil
}

// coerceArg converts arg to kind. Untyped text targets accept any scalar by
// its canonical text form.
func coerceArg(kind value.Kind, arg interface{}, enum *value.Enum) (value.Value, error) {
	v, err := value.FromGo(kind, arg, enum)
	if err == nil || kind != value.Text || enum != nil {
		return v, err
	}
	src, srcErr := value.FromGo(value.KindOf(arg), arg, nil)
	if srcErr != nil {
		return value.Value{}, err
	}
	return value.Str(src.String()), nil
}

func nullOrUnsupported(op Operator, target Target, arg interface{}) error {
	if arg == nil {
		return rqlerr.Usage("%s on field %q: value is nil", op, target.Name)
	}
	return rqlerr.Coercion("", -1, target.Name, fmt.Errorf("unsupported value type %T", arg))
}

func arityText(op Operator) string {
	switch op.Arity() {
	case grammar.ArityUnary:
		return "exactly 1 value"
	case grammar.ArityBinary:
		return "exactly 2 values"
	case grammar.ArityVariadic:
		return "at least 1 value"
	default:
		return "no values"
	}
}
