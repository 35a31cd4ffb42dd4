package criteria

import (
	"reflect"

	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
)

// Introspect builds one predicate per populated property of criteria.
// Zero-valued properties, nil pointers and empty slices are skipped; a
// non-nil pointer counts as populated even when it points at a zero value.
func Introspect(criteria interface{}, target *shape.Shape) ([]predicate.Predicate, error) {
	rv := reflect.ValueOf(criteria)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, rqlerr.Usage("criteria cannot be nil")
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, rqlerr.Usage("criteria cannot be nil")
	}

	desc, err := DescriptorOf(rv.Type())
	if err != nil {
		return nil, rqlerr.Usage("%v", err)
	}

	var preds []predicate.Predicate
	for _, entry := range desc.Entries {
		fv, ok := fieldByIndex(rv, entry.Index)
		if !ok {
			continue
		}
		args, ok := operands(fv, entry.List)
		if !ok {
			continue
		}

		t, err := predicate.Resolve(target, entry.Field)
		if err != nil {
			return nil, err
		}
		p, err := predicate.Build(entry.Operator, t, args)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// fieldByIndex is reflect.Value.FieldByIndex without panicking on nil
// embedded pointers.
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

func operands(fv reflect.Value, list bool) ([]interface{}, bool) {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, false
		}
		fv = fv.Elem()
	} else if fv.IsZero() {
		return nil, false
	}

	if !list {
		return []interface{}{fv.Interface()}, true
	}
	if fv.Len() == 0 {
		return nil, false
	}
	args := make([]interface{}, fv.Len())
	for i := range args {
		args[i] = fv.Index(i).Interface()
	}
	return args, true
}
