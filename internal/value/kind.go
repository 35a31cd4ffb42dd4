package value

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the declared value kind of a field and the tag of a Value.
type Kind uint8

const (
	Invalid Kind = iota
	Integer
	Decimal
	Text
	Boolean
	DateTime
	Label
	Guid
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Integer:  "integer",
	Decimal:  "decimal",
	Text:     "text",
	Boolean:  "boolean",
	DateTime: "datetime",
	Label:    "label",
	Guid:     "guid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Ordered reports whether the ordering operators apply to k.
func (k Kind) Ordered() bool {
	return k != Invalid
}

// ParseKind resolves a kind name as written in declarative shape files.
// "string" and "int" are accepted as aliases.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer", "int":
		return Integer, nil
	case "decimal", "number":
		return Decimal, nil
	case "text", "string":
		return Text, nil
	case "boolean", "bool":
		return Boolean, nil
	case "datetime", "date", "time":
		return DateTime, nil
	case "label", "enum":
		return Label, nil
	case "guid", "uuid":
		return Guid, nil
	}
	return Invalid, fmt.Errorf("unknown value kind %q", name)
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

// KindOfType infers the value kind of a Go type. Pointers are unwrapped.
// Types that are not scalar (structs, slices, maps) report Invalid.
func KindOfType(t reflect.Type) Kind {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return Invalid
	}

	switch t {
	case decimalType:
		return Decimal
	case timeType:
		return DateTime
	case uuidType:
		return Guid
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer
	case reflect.Float32, reflect.Float64:
		return Decimal
	case reflect.String:
		return Text
	case reflect.Bool:
		return Boolean
	default:
		return Invalid
	}
}
