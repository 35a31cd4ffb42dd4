package rql

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
)

// EnumMember is one label of an enumerated type.
type EnumMember = value.Member

func enumTypeOf(enumValue interface{}) (reflect.Type, error) {
	t := reflect.TypeOf(enumValue)
	if t == nil {
		return nil, fmt.Errorf("enumValue cannot be nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, nil
}

// RegisterEnum declares the labels of an integral enum type, given as a zero
// value or a pointer to one. Label fields of that type then accept member
// names in queries; ordering follows member values and SQL and document
// parameters carry the value.
//
// Types may instead declare their members with a method:
//
//	func (Status) EnumMembers() map[string]int {
//		return map[string]int{"Open": 1, "Closed": 2}
//	}
func RegisterEnum(enumValue interface{}, members map[string]int64) error {
	t, err := enumTypeOf(enumValue)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("enum %s declares no members", t.Name())
	}

	list := make([]value.Member, 0, len(members))
	for name, v := range members {
		list = append(list, value.Member{Name: name, Value: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Value != list[j].Value {
			return list[i].Value < list[j].Value
		}
		return list[i].Name < list[j].Name
	})
	return shape.RegisterEnum(t, list)
}

// RegisterLabels declares the labels of a string enum type in order. Labels
// are matched case-sensitively and order by position; parameters carry the
// label text.
func RegisterLabels(enumValue interface{}, labels ...string) error {
	t, err := enumTypeOf(enumValue)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return fmt.Errorf("enum %s declares no labels", t.Name())
	}

	list := make([]value.Member, len(labels))
	for i, label := range labels {
		list[i] = value.Member{Name: label, Value: int64(i)}
	}
	return shape.RegisterEnum(t, list)
}
