package value

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNil is returned when a nil pointer or interface is coerced.
var ErrNil = errors.New("value is nil")

// dateTimeLayouts are tried in order when parsing DateTime literals.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Parse coerces literal text into a value of kind k. enum is required for Label.
func Parse(k Kind, text string, enum *Enum) (Value, error) {
	switch k {
	case Integer:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid integer", text)
		}
		return Int(n), nil
	case Decimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid decimal", text)
		}
		return Dec(d), nil
	case Text:
		return Str(text), nil
	case Boolean:
		switch strings.ToLower(text) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("%q is not a valid boolean", text)
	case DateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return Time(t), nil
			}
		}
		return Value{}, fmt.Errorf("%q is not a valid date/time", text)
	case Guid:
		g, err := uuid.Parse(text)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid guid", text)
		}
		return GUID(g), nil
	case Label:
		if enum == nil {
			return Value{}, fmt.Errorf("no labels are declared for %q", text)
		}
		m, ok := enum.Lookup(text)
		if !ok {
			return Value{}, fmt.Errorf("%q is not one of %s", text, strings.Join(enum.Names(), ", "))
		}
		return LabelOf(enum, m), nil
	default:
		return Value{}, fmt.Errorf("cannot coerce %q to %s", text, k)
	}
}

// Infer types a literal without a declared kind. Quoted literals are always
// Text; bare literals become Boolean, Integer or Decimal when they parse as one.
func Infer(text string, quoted bool) Value {
	if quoted {
		return Str(text)
	}
	switch strings.ToLower(text) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(n)
	}
	if looksNumeric(text) {
		if d, err := decimal.NewFromString(text); err == nil {
			return Dec(d)
		}
	}
	return Str(text)
}

func looksNumeric(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}

// FromGo coerces a native Go value into kind k.
func FromGo(k Kind, x interface{}, enum *Enum) (Value, error) {
	if v, ok := x.(Value); ok {
		if v.kind == k {
			return v, nil
		}
		x = v.Native()
	}
	return FromReflect(k, reflect.ValueOf(x), enum)
}

// KindOf infers the kind of a native Go value, for untyped builders.
// Value arguments report their own kind.
func KindOf(x interface{}) Kind {
	if v, ok := x.(Value); ok {
		return v.kind
	}
	if x == nil {
		return Invalid
	}
	return KindOfType(reflect.TypeOf(x))
}

// FromReflect coerces a reflected Go value into kind k. Pointers and
// interfaces are followed; nil yields ErrNil.
func FromReflect(k Kind, rv reflect.Value, enum *Enum) (Value, error) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return Value{}, ErrNil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Value{}, ErrNil
	}

	if rv.Kind() == reflect.String && k != Text && k != Label {
		return Parse(k, rv.String(), enum)
	}

	switch k {
	case Integer:
		return integerFrom(rv)
	case Decimal:
		return decimalFrom(rv)
	case Text:
		if rv.Kind() == reflect.String {
			return Str(rv.String()), nil
		}
	case Boolean:
		if rv.Kind() == reflect.Bool {
			return Bool(rv.Bool()), nil
		}
	case DateTime:
		if rv.Type() == timeType {
			return Time(rv.Interface().(time.Time)), nil
		}
	case Guid:
		if rv.Type() == uuidType {
			return GUID(rv.Interface().(uuid.UUID)), nil
		}
		if rv.Kind() == reflect.Array && rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
			var g uuid.UUID
			reflect.Copy(reflect.ValueOf(g[:]), rv)
			return GUID(g), nil
		}
	case Label:
		return labelFrom(rv, enum)
	}
	return Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), k)
}

func integerFrom(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("%d overflows integer", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return Value{}, fmt.Errorf("%v is not an integer", f)
		}
		return Int(int64(f)), nil
	}
	if rv.Type() == decimalType {
		d := rv.Interface().(decimal.Decimal)
		if !d.IsInteger() {
			return Value{}, fmt.Errorf("%s is not an integer", d)
		}
		return Int(d.IntPart()), nil
	}
	return Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), Integer)
}

func decimalFrom(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Dec(decimal.NewFromInt(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Dec(decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0)), nil
	case reflect.Float32:
		return Dec(decimal.NewFromFloat32(float32(rv.Float()))), nil
	case reflect.Float64:
		return Dec(decimal.NewFromFloat(rv.Float())), nil
	}
	if rv.Type() == decimalType {
		return Dec(rv.Interface().(decimal.Decimal)), nil
	}
	return Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), Decimal)
}

func labelFrom(rv reflect.Value, enum *Enum) (Value, error) {
	if enum == nil {
		return Value{}, fmt.Errorf("no labels are declared for %s", rv.Type())
	}
	switch rv.Kind() {
	case reflect.String:
		return Parse(Label, rv.String(), enum)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		n, err := integerFrom(rv)
		if err != nil {
			return Value{}, err
		}
		m, ok := enum.ByValue(n.i)
		if !ok {
			return Value{}, fmt.Errorf("%d is not a member of %s", n.i, enum.Name)
		}
		return LabelOf(enum, m), nil
	}
	return Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), Label)
}
