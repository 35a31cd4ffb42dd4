package criteria

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Overpost records payload fields a criteria type does not declare. Embed it
// in a criteria struct and decode payloads with Decode:
//
//	type ProductCriteria struct {
//		criteria.Overpost
//		Code int `json:"code"`
//	}
type Overpost struct {
	fields map[string]json.RawMessage
}

// IsOverposted reports whether the decoded payload held undeclared fields.
func (o *Overpost) IsOverposted() bool {
	return len(o.fields) > 0
}

// OverpostedFieldNames returns the undeclared field names in sorted order.
func (o *Overpost) OverpostedFieldNames() []string {
	names := make([]string, 0, len(o.fields))
	for name := range o.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OverpostedFields returns the undeclared fields with their raw JSON values.
func (o *Overpost) OverpostedFields() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(o.fields))
	for k, v := range o.fields {
		out[k] = v
	}
	return out
}

func (o *Overpost) recordOverposted(fields map[string]json.RawMessage) {
	o.fields = fields
}

type overpostRecorder interface {
	recordOverposted(map[string]json.RawMessage)
}

// Decode unmarshals a JSON object into dst, a pointer to a criteria struct.
// When dst embeds Overpost, undeclared fields are captured verbatim instead of
// being dropped. It returns the undeclared field names.
func Decode(data []byte, dst interface{}) ([]string, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("criteria destination must be a non-nil pointer, got %T", dst)
	}
	desc, err := DescriptorOf(rv.Type())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	extra := make(map[string]json.RawMessage)
	for key, msg := range raw {
		if !desc.Declares(key) {
			extra[key] = msg
		}
	}
	if len(extra) == 0 {
		extra = nil
	}
	if rec, ok := dst.(overpostRecorder); ok {
		rec.recordOverposted(extra)
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
