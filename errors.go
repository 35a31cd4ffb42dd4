package rql

import (
	"github.com/nlstn/go-rql/internal/rqlerr"
)

// Sentinel errors for the RQL error taxonomy.
// These can be used with errors.Is() for error handling.
var (
	// ErrGrammar indicates malformed RQL text: unmatched parentheses, an
	// unknown operator or combinator, or the wrong number of literals.
	ErrGrammar = rqlerr.ErrGrammar

	// ErrResolution indicates a field name that does not exist on the target shape.
	ErrResolution = rqlerr.ErrResolution

	// ErrCoercion indicates a literal that cannot be converted to the field's value kind.
	ErrCoercion = rqlerr.ErrCoercion

	// ErrUsage indicates programmer misuse of the builder, such as a terminal
	// call without a field or a nil argument. It is never caused by user input.
	ErrUsage = rqlerr.ErrUsage
)

// Error is the structured error returned by parsing, building and compiling.
// Input-driven errors carry the offending RQL text in Query, the byte offset
// in Pos and the offending fragment.
//
// Example:
//
//	var rerr *rql.Error
//	if errors.As(err, &rerr) {
//		log.Printf("bad query at %d near %q: %s", rerr.Pos, rerr.Fragment, rerr.Message)
//	}
type Error = rqlerr.Error

// ErrorKind classifies an Error.
type ErrorKind = rqlerr.Kind

// Error kinds.
const (
	KindGrammar    = rqlerr.KindGrammar
	KindResolution = rqlerr.KindResolution
	KindCoercion   = rqlerr.KindCoercion
	KindUsage      = rqlerr.KindUsage
)

// KindOf returns the kind of err, or 0 when err is not an RQL error.
func KindOf(err error) ErrorKind {
	return rqlerr.KindOf(err)
}

// IsInputError reports whether err was caused by user input rather than a
// caller defect, i.e. whether it is a Grammar, Resolution or Coercion error.
func IsInputError(err error) bool {
	switch rqlerr.KindOf(err) {
	case KindGrammar, KindResolution, KindCoercion:
		return true
	}
	return false
}
