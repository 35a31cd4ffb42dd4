// Package shape describes the target a query is resolved against: its fields,
// their value kinds and how each backend names them.
package shape

import (
	"fmt"
	"reflect"

	"github.com/nlstn/go-rql/internal/value"
	"gorm.io/gorm/schema"
)

// Field is a single field of a Shape.
type Field struct {
	// Name is the field name used in RQL text and builder calls.
	Name string
	// GoName is the struct field name; empty for declarative shapes.
	GoName string
	// Index is the reflect.Value.FieldByIndex path; nil for declarative shapes.
	Index []int
	Type  reflect.Type
	Kind  value.Kind
	// Enum holds the labels of Label fields.
	Enum *value.Enum
	// Column is the SQL column name.
	Column string
	// DocKey is the document-store key.
	DocKey string
	// JSONName is the key used when records are decoded from JSON.
	JSONName string
	// Nullable is set for pointer-typed fields.
	Nullable bool
	// Association is set for nested objects and collections.
	Association bool
}

// Filterable reports whether predicates can target the field.
func (f *Field) Filterable() bool {
	return !f.Association && f.Kind != value.Invalid
}

// Projectable reports whether the field is a scalar a consumer may select.
func (f *Field) Projectable() bool {
	return f.Filterable()
}

// Shape is the resolved description of a query target.
type Shape struct {
	Name string
	// Type is the Go struct type; nil for declarative shapes over map records.
	Type   reflect.Type
	Fields []Field

	byName map[string]int
	byJSON map[string]int
}

// Lookup resolves a field by RQL name, falling back to its JSON name.
func (s *Shape) Lookup(name string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	if i, ok := s.byName[name]; ok {
		return &s.Fields[i], true
	}
	if i, ok := s.byJSON[name]; ok {
		return &s.Fields[i], true
	}
	return nil, false
}

// Typed reports whether s is backed by a Go struct type.
func (s *Shape) Typed() bool {
	return s != nil && s.Type != nil
}

func (s *Shape) index() error {
	s.byName = make(map[string]int, len(s.Fields))
	s.byJSON = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("shape %s declares field %s twice", s.Name, f.Name)
		}
		s.byName[f.Name] = i
		if f.JSONName != "" && f.JSONName != f.Name {
			s.byJSON[f.JSONName] = i
		}
	}
	return nil
}

// FieldDef declares a field of a declarative shape.
type FieldDef struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Column string   `yaml:"column,omitempty"`
	DocKey string   `yaml:"doc,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
}

// Define builds a declarative shape for map-shaped records.
func Define(name string, defs []FieldDef) (*Shape, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("shape %s must declare at least one field", name)
	}

	s := &Shape{Name: name, Fields: make([]Field, 0, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("shape %s has a field with an empty name", name)
		}
		kind, err := value.ParseKind(def.Kind)
		if err != nil {
			return nil, fmt.Errorf("shape %s field %s: %w", name, def.Name, err)
		}

		f := Field{
			Name:     def.Name,
			Kind:     kind,
			Column:   def.Column,
			DocKey:   def.DocKey,
			JSONName: def.Name,
		}
		if f.Column == "" {
			f.Column = columnName(def.Name)
		}
		if f.DocKey == "" {
			f.DocKey = def.Name
		}
		if kind == value.Label {
			f.Enum, err = value.EnumOf(def.Name, def.Labels...)
			if err != nil {
				return nil, fmt.Errorf("shape %s field %s: %w", name, def.Name, err)
			}
		}
		s.Fields = append(s.Fields, f)
	}

	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

var naming = schema.NamingStrategy{}

// columnName applies gorm's default column naming, so shapes line up with
// tables created by AutoMigrate.
func columnName(goName string) string {
	return naming.ColumnName("", goName)
}
