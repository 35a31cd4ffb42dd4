// Package rqlerr defines the error taxonomy shared by the RQL parser, lowering,
// builder and backend compilers.
package rqlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an RQL error.
type Kind int

const (
	// KindGrammar is malformed RQL text: unmatched parentheses, unknown operator
	// or combinator names, wrong literal arity.
	KindGrammar Kind = iota + 1
	// KindResolution is a field name that does not exist on the target shape.
	KindResolution
	// KindCoercion is a literal that cannot be converted to the field's value kind.
	KindCoercion
	// KindUsage is a caller defect, not user input.
	KindUsage
)

// Sentinel errors, one per Kind. Use errors.Is to classify an *Error.
var (
	ErrGrammar    = errors.New("rql: grammar error")
	ErrResolution = errors.New("rql: unknown field")
	ErrCoercion   = errors.New("rql: invalid value")
	ErrUsage      = errors.New("rql: invalid usage")
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindResolution:
		return "resolution"
	case KindCoercion:
		return "coercion"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindGrammar:
		return ErrGrammar
	case KindResolution:
		return ErrResolution
	case KindCoercion:
		return ErrCoercion
	case KindUsage:
		return ErrUsage
	default:
		return nil
	}
}

// Error is the structured error returned by every RQL operation.
type Error struct {
	Kind Kind
	// Query is the original RQL text, empty for errors raised outside of text parsing.
	Query string
	// Pos is the byte offset into Query, or -1 when no position applies.
	Pos int
	// Fragment is the offending part of Query (or the field name for builder errors).
	Fragment string
	// Message is the human-readable cause.
	Message string
	// Err is an optional wrapped cause, e.g. a strconv parse error.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.Pos >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Pos)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&b, " near %q", e.Fragment)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Query != "" {
		fmt.Fprintf(&b, " (query %q)", e.Query)
	}
	return b.String()
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithQuery returns a copy of e with Query set, unless it is already set.
func (e *Error) WithQuery(query string) *Error {
	if e.Query != "" {
		return e
	}
	cp := *e
	cp.Query = query
	return &cp
}

// Grammar builds a KindGrammar error.
func Grammar(query string, pos int, fragment string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindGrammar, Query: query, Pos: pos, Fragment: fragment, Message: fmt.Sprintf(format, args...)}
}

// Resolution builds a KindResolution error for an unknown field.
func Resolution(query string, pos int, field string, shapeName string) *Error {
	msg := fmt.Sprintf("field %q does not exist", field)
	if shapeName != "" {
		msg = fmt.Sprintf("field %q does not exist on %s", field, shapeName)
	}
	return &Error{Kind: KindResolution, Query: query, Pos: pos, Fragment: field, Message: msg}
}

// Coercion builds a KindCoercion error wrapping cause.
func Coercion(query string, pos int, fragment string, cause error) *Error {
	return &Error{Kind: KindCoercion, Query: query, Pos: pos, Fragment: fragment, Err: cause}
}

// Usage builds a KindUsage error.
func Usage(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUsage, Pos: -1, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
