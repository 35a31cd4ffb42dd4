// Package rql filters collections with RQL, a compact function-call query
// syntax, and compiles the result for in-memory collections, SQL databases
// and document stores.
//
// A query is parsed, or built fluently, into a flat list of typed predicates
// joined by AND:
//
//	b := rql.For(&Product{}).FromRql("(in(Code,3,4,5),startswith(Name,\"Wid\"))")
//
//	b = rql.For(&Product{}).
//		Where("Code").In(3, 4, 5).
//		And("Name").StartsWith("Wid")
//
// The same builder compiles to each backend:
//
//	match, err := b.Match()               // func(record any) bool
//	where, params, err := b.SQL("sqlite") // "code" IN (?, ?, ?) AND ...
//	filter, err := b.Document()           // bson.D for the mongo driver
//	err = rql.Apply(db, b).Find(&products).Error
//
// Errors are *Error values classified as grammar, resolution, coercion or
// usage errors; the first three are caused by user input.
package rql
