// Package criteria turns annotated criteria structs into predicates and
// records undeclared payload fields.
//
// Each exported field of a criteria struct is one criterion. The rql tag
// names the target field and operator:
//
//	type ProductCriteria struct {
//		Codes  []int  `rql:"Code,op=in"`
//		Name   string `rql:",op=startswith"`
//		Ages   [2]int `rql:"Age,op=between"`
//		Secret string `rql:"-"`
//	}
//
// The operator defaults to eq for scalar fields and in for slices.
package criteria

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/value"
)

// Entry describes one criteria property.
type Entry struct {
	// Property is the Go field name.
	Property string
	Index    []int
	// Field is the target field name the predicate resolves against.
	Field    string
	Operator grammar.Operator
	// List is set for slice and array operands.
	List bool
	// Kind is the operand kind inferred from the Go type.
	Kind value.Kind
}

// Descriptor is the cached metadata of a criteria type.
type Descriptor struct {
	Type    reflect.Type
	Entries []Entry
	// known holds the lowercased JSON names of every decodable field.
	known map[string]struct{}
}

// Declares reports whether a payload key maps to a field of the criteria
// type. Matching is case-insensitive, like encoding/json.
func (d *Descriptor) Declares(key string) bool {
	_, ok := d.known[strings.ToLower(key)]
	return ok
}

type descriptorEntry struct {
	once sync.Once
	desc *Descriptor
	err  error
}

var descriptors sync.Map // map[reflect.Type]*descriptorEntry

var overpostType = reflect.TypeOf(Overpost{})

// DescriptorOf returns the cached descriptor of t, computing it at most once.
func DescriptorOf(t reflect.Type) (*Descriptor, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("criteria must be a struct, got %v", t)
	}

	e, _ := descriptors.LoadOrStore(t, &descriptorEntry{})
	entry := e.(*descriptorEntry)
	entry.once.Do(func() {
		entry.desc, entry.err = describe(t)
	})
	return entry.desc, entry.err
}

func describe(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Type: t, known: make(map[string]struct{})}
	if err := d.collect(t, nil); err != nil {
		return nil, fmt.Errorf("criteria %s: %w", t.Name(), err)
	}
	return d, nil
}

func (d *Descriptor) collect(t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		if sf.Type == overpostType || sf.Type == reflect.PointerTo(overpostType) {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("json") == "" {
			if err := d.collect(sf.Type, index); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		if name, ok := jsonKey(sf); ok {
			d.known[strings.ToLower(name)] = struct{}{}
		}

		tag := sf.Tag.Get("rql")
		if tag == "-" {
			continue
		}
		entry, err := parseEntry(sf, tag, index)
		if err != nil {
			return err
		}
		d.Entries = append(d.Entries, entry)
	}
	return nil
}

func jsonKey(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return sf.Name, true
}

func parseEntry(sf reflect.StructField, tag string, index []int) (Entry, error) {
	e := Entry{Property: sf.Name, Index: index, Field: sf.Name}

	parts := strings.Split(tag, ",")
	if name := strings.TrimSpace(parts[0]); name != "" {
		e.Field = name
	}
	for _, opt := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "op":
			op, ok := grammar.LookupOperator(val)
			if !ok {
				return Entry{}, fmt.Errorf("field %s: unknown operator %q", sf.Name, val)
			}
			e.Operator = op
		case "":
		default:
			return Entry{}, fmt.Errorf("field %s: unknown rql tag option %q", sf.Name, key)
		}
	}

	operand := sf.Type
	for operand.Kind() == reflect.Pointer {
		operand = operand.Elem()
	}
	arrayLen := -1
	if operand.Kind() == reflect.Slice || operand.Kind() == reflect.Array {
		e.List = true
		if operand.Kind() == reflect.Array {
			arrayLen = operand.Len()
		}
		operand = operand.Elem()
	}
	e.Kind = value.KindOfType(operand)
	if e.Kind == value.Invalid {
		return Entry{}, fmt.Errorf("field %s: unsupported operand type %s", sf.Name, sf.Type)
	}

	if e.Operator == grammar.NotSet {
		e.Operator = grammar.Equals
		if e.List {
			e.Operator = grammar.In
		}
	}

	multi := e.Operator.Arity() == grammar.ArityBinary || e.Operator.Arity() == grammar.ArityVariadic
	if multi != e.List {
		want := "a scalar"
		if multi {
			want = "a slice"
		}
		return Entry{}, fmt.Errorf("field %s: operator %s requires %s operand", sf.Name, e.Operator, want)
	}
	if arrayLen >= 0 && !e.Operator.AcceptsLen(arrayLen) {
		return Entry{}, fmt.Errorf("field %s: operator %s cannot take %d values", sf.Name, e.Operator, arrayLen)
	}
	return e, nil
}
