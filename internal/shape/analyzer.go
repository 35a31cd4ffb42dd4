package shape

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/nlstn/go-rql/internal/value"
)

type cacheEntry struct {
	once  sync.Once
	shape *Shape
	err   error
}

// cache holds one entry per struct type. Entries are computed at most once;
// concurrent callers for the same type wait on the first populator only.
var cache sync.Map // map[reflect.Type]*cacheEntry

// Analyze returns the cached shape of model's struct type.
func Analyze(model interface{}) (*Shape, error) {
	if s, ok := model.(*Shape); ok {
		return s, nil
	}
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	return Of(t)
}

// Of returns the cached shape of t. Pointer types are unwrapped.
func Of(t reflect.Type) (*Shape, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}

	e, _ := cache.LoadOrStore(t, &cacheEntry{})
	entry := e.(*cacheEntry)
	entry.once.Do(func() {
		entry.shape, entry.err = analyzeStruct(t)
	})
	return entry.shape, entry.err
}

func analyzeStruct(t reflect.Type) (*Shape, error) {
	s := &Shape{Name: t.Name(), Type: t}
	if err := collectFields(s, t, nil); err != nil {
		return nil, err
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

// collectFields walks exported fields, flattening embedded structs the way
// encoding/json and gorm do.
func collectFields(s *Shape, t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		name, skip := rqlName(sf)
		if skip {
			continue
		}

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && value.KindOfType(sf.Type) == value.Invalid &&
			sf.Tag.Get("rql") == "" {
			if err := collectFields(s, sf.Type, index); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		f, err := analyzeField(sf, name, index)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
		}
		s.Fields = append(s.Fields, f)
	}
	return nil
}

func analyzeField(sf reflect.StructField, name string, index []int) (Field, error) {
	f := Field{
		Name:     name,
		GoName:   sf.Name,
		Index:    index,
		Type:     sf.Type,
		JSONName: jsonName(sf),
		Column:   gormColumn(sf),
		DocKey:   bsonKey(sf),
		Nullable: sf.Type.Kind() == reflect.Pointer,
	}

	base := sf.Type
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	enum, isEnum, err := ResolveEnum(base)
	if err != nil {
		return Field{}, err
	}
	if isEnum {
		f.Kind = value.Label
		f.Enum = enum
		return f, nil
	}

	f.Kind = value.KindOfType(base)
	if f.Kind == value.Invalid {
		switch base.Kind() {
		case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
			f.Association = true
		}
	}
	return f, nil
}

// rqlName returns the RQL name from the `rql` tag, defaulting to the Go name.
// `rql:"-"` excludes the field.
func rqlName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("rql")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return sf.Name, false
}

// jsonName extracts the JSON field name from struct tags.
func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
		return name
	}
	return sf.Name
}

// gormColumn honours `gorm:"column:x"` and otherwise uses gorm's naming strategy.
func gormColumn(sf reflect.StructField) string {
	for _, part := range strings.Split(sf.Tag.Get("gorm"), ";") {
		part = strings.TrimSpace(part)
		if col, ok := strings.CutPrefix(part, "column:"); ok && col != "" {
			return col
		}
	}
	return columnName(sf.Name)
}

// bsonKey honours `bson:"x"` and otherwise lowercases the Go name, matching
// the mongo driver's default struct codec.
func bsonKey(sf reflect.StructField) string {
	if name, _, _ := strings.Cut(sf.Tag.Get("bson"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(sf.Name)
}
