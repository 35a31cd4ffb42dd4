package grammar

import "strings"

// Operator is the closed set of RQL comparison and membership operators.
type Operator int

const (
	// NotSet is the sentinel for "no criteria".
	NotSet Operator = iota
	Equals
	NotEquals
	LesserThan
	GreaterThan
	LesserThanOrEqual
	GreaterThanOrEqual
	StartsWith
	Contains
	Between
	In
	NotIn
)

// Arity is the number of values an operator takes.
type Arity int

const (
	ArityNone Arity = iota
	// ArityUnary operators take exactly one value.
	ArityUnary
	// ArityBinary operators take exactly two values.
	ArityBinary
	// ArityVariadic operators take one or more values.
	ArityVariadic
)

var operatorNames = map[Operator]string{
	NotSet:             "notset",
	Equals:             "eq",
	NotEquals:          "ne",
	LesserThan:         "lt",
	GreaterThan:        "gt",
	LesserThanOrEqual:  "lte",
	GreaterThanOrEqual: "gte",
	StartsWith:         "startswith",
	Contains:           "contains",
	Between:            "between",
	In:                 "in",
	NotIn:              "nin",
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for op, name := range operatorNames {
		if op != NotSet {
			m[name] = op
		}
	}
	return m
}()

// String returns the RQL name of the operator.
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// LookupOperator resolves an RQL operator name. Matching is case-insensitive.
func LookupOperator(name string) (Operator, bool) {
	op, ok := operatorsByName[strings.ToLower(name)]
	return op, ok
}

// Arity returns how many values o takes.
func (o Operator) Arity() Arity {
	switch o {
	case Equals, NotEquals, LesserThan, GreaterThan, LesserThanOrEqual, GreaterThanOrEqual, StartsWith, Contains:
		return ArityUnary
	case Between:
		return ArityBinary
	case In, NotIn:
		return ArityVariadic
	default:
		return ArityNone
	}
}

// AcceptsLen reports whether n values satisfy o's arity.
func (o Operator) AcceptsLen(n int) bool {
	switch o.Arity() {
	case ArityUnary:
		return n == 1
	case ArityBinary:
		return n == 2
	case ArityVariadic:
		return n >= 1
	default:
		return n == 0
	}
}

// IsPattern reports whether o is a text pattern operator.
func (o Operator) IsPattern() bool {
	return o == StartsWith || o == Contains
}

// IsOrdering reports whether o compares by order rather than equality.
func (o Operator) IsOrdering() bool {
	switch o {
	case LesserThan, GreaterThan, LesserThanOrEqual, GreaterThanOrEqual, Between:
		return true
	}
	return false
}

// Combinator joins the children of a Group.
type Combinator int

const (
	And Combinator = iota
	Or
)

func (c Combinator) String() string {
	if c == Or {
		return "or"
	}
	return "and"
}

func lookupCombinator(name string) (Combinator, bool) {
	switch strings.ToLower(name) {
	case "and":
		return And, true
	case "or":
		return Or, true
	}
	return And, false
}
