// Package value implements the typed values RQL literals are coerced into.
//
// A Value is a tagged union decided once at coercion time. Consumers switch on
// Kind instead of inspecting dynamic Go types.
package value

import (
	"bytes"
	"cmp"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is an immutable typed value.
type Value struct {
	kind Kind
	i    int64
	d    decimal.Decimal
	s    string
	b    bool
	t    time.Time
	g    uuid.UUID
	// textual is set for Label values of textual enums.
	textual bool
}

// Int returns an Integer value.
func Int(v int64) Value { return Value{kind: Integer, i: v} }

// Dec returns a Decimal value.
func Dec(d decimal.Decimal) Value { return Value{kind: Decimal, d: d} }

// Str returns a Text value.
func Str(s string) Value { return Value{kind: Text, s: s} }

// Bool returns a Boolean value.
func Bool(b bool) Value { return Value{kind: Boolean, b: b} }

// Time returns a DateTime value.
func Time(t time.Time) Value { return Value{kind: DateTime, t: t} }

// GUID returns a Guid value.
func GUID(g uuid.UUID) Value { return Value{kind: Guid, g: g} }

// LabelOf returns a Label value for a member of e.
func LabelOf(e *Enum, m Member) Value {
	return Value{kind: Label, s: m.Name, i: m.Value, textual: e != nil && e.Textual}
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != Invalid }

// Integer returns the integer payload. For Label values it is the member value.
func (v Value) Integer() int64 { return v.i }

// Decimal returns the decimal payload.
func (v Value) Decimal() decimal.Decimal { return v.d }

// Text returns the text payload. For Label values it is the member name.
func (v Value) Text() string { return v.s }

// Boolean returns the boolean payload.
func (v Value) Boolean() bool { return v.b }

// Time returns the date/time payload.
func (v Value) Time() time.Time { return v.t }

// GUID returns the guid payload.
func (v Value) GUID() uuid.UUID { return v.g }

// Native returns the Go value handed to database drivers.
// Label values yield the member name for textual enums and the member value otherwise.
func (v Value) Native() interface{} {
	switch v.kind {
	case Integer:
		return v.i
	case Decimal:
		return v.d
	case Text:
		return v.s
	case Boolean:
		return v.b
	case DateTime:
		return v.t
	case Guid:
		return v.g
	case Label:
		if v.textual {
			return v.s
		}
		return v.i
	default:
		return nil
	}
}

// String returns the canonical text form of v.
func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Decimal:
		return v.d.String()
	case Text, Label:
		return v.s
	case Boolean:
		return strconv.FormatBool(v.b)
	case DateTime:
		return v.t.Format(time.RFC3339Nano)
	case Guid:
		return v.g.String()
	default:
		return ""
	}
}

// Compare orders v against o. ok is false when the kinds differ.
func (v Value) Compare(o Value) (c int, ok bool) {
	if v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case Integer, Label:
		return cmp.Compare(v.i, o.i), true
	case Decimal:
		return v.d.Cmp(o.d), true
	case Text:
		return strings.Compare(v.s, o.s), true
	case Boolean:
		switch {
		case v.b == o.b:
			return 0, true
		case !v.b:
			return -1, true
		default:
			return 1, true
		}
	case DateTime:
		return v.t.Compare(o.t), true
	case Guid:
		return bytes.Compare(v.g[:], o.g[:]), true
	default:
		return 0, false
	}
}

// Equal reports value equality on the coerced kind.
func (v Value) Equal(o Value) bool {
	c, ok := v.Compare(o)
	return ok && c == 0
}

// MarshalJSON renders v as its natural JSON form. Labels render as their name.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Integer:
		return json.Marshal(v.i)
	case Decimal:
		return []byte(v.d.String()), nil
	case Boolean:
		return json.Marshal(v.b)
	case Invalid:
		return []byte("null"), nil
	default:
		return json.Marshal(v.String())
	}
}
