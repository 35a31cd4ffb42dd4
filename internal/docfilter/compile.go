// Package docfilter compiles a predicate list into a MongoDB-style document
// filter.
package docfilter

import (
	"fmt"
	"regexp"

	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/value"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MatchAll returns the filter that matches every document.
func MatchAll() bson.D { return bson.D{} }

// Compile returns the conjunction of preds. A single predicate compiles to its
// own sub-filter; several are combined under $and so repeated keys keep
// their individual conditions.
func Compile(preds []predicate.Predicate) (bson.D, error) {
	if len(preds) == 0 {
		return MatchAll(), nil
	}

	subs := make(bson.A, 0, len(preds))
	for _, p := range preds {
		sub, err := condition(p)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if len(subs) == 1 {
		return subs[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: subs}}, nil
}

func condition(p predicate.Predicate) (bson.D, error) {
	if !p.Operator.AcceptsLen(len(p.Values)) {
		return nil, fmt.Errorf("%s on %s has %d values", p.Operator, p.Target.Name, len(p.Values))
	}
	key := p.Target.DocKey()

	values := make([]interface{}, len(p.Values))
	for i, v := range p.Values {
		bv, err := toBSON(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", p.Target.Name, err)
		}
		values[i] = bv
	}

	var expr bson.D
	switch p.Operator {
	case predicate.Equals:
		expr = bson.D{{Key: "$eq", Value: values[0]}}
	case predicate.NotEquals:
		// Null and missing fields never match.
		expr = bson.D{{Key: "$nin", Value: bson.A{values[0], nil}}}
	case predicate.LesserThan:
		expr = bson.D{{Key: "$lt", Value: values[0]}}
	case predicate.GreaterThan:
		expr = bson.D{{Key: "$gt", Value: values[0]}}
	case predicate.LesserThanOrEqual:
		expr = bson.D{{Key: "$lte", Value: values[0]}}
	case predicate.GreaterThanOrEqual:
		expr = bson.D{{Key: "$gte", Value: values[0]}}
	case predicate.Between:
		expr = bson.D{{Key: "$gte", Value: values[0]}, {Key: "$lte", Value: values[1]}}
	case predicate.In:
		expr = bson.D{{Key: "$in", Value: bson.A(values)}}
	case predicate.NotIn:
		expr = bson.D{{Key: "$nin", Value: append(bson.A(values), nil)}}
	case predicate.StartsWith:
		expr = bson.D{{Key: "$regex", Value: bson.Regex{Pattern: "^" + regexp.QuoteMeta(p.Values[0].Text())}}}
	case predicate.Contains:
		expr = bson.D{{Key: "$regex", Value: bson.Regex{Pattern: regexp.QuoteMeta(p.Values[0].Text())}}}
	default:
		return nil, fmt.Errorf("operator %s has no document form", p.Operator)
	}
	return bson.D{{Key: key, Value: expr}}, nil
}

// toBSON converts v to the value stored by the mongo driver's default codecs.
func toBSON(v value.Value) (interface{}, error) {
	switch v.Kind() {
	case value.Decimal:
		d, err := bson.ParseDecimal128(v.Decimal().String())
		if err != nil {
			return nil, err
		}
		return d, nil
	case value.DateTime:
		return bson.NewDateTimeFromTime(v.Time()), nil
	case value.Guid:
		g := v.GUID()
		return bson.Binary{Subtype: bson.TypeBinaryUUID, Data: g[:]}, nil
	default:
		return v.Native(), nil
	}
}
