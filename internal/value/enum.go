package value

import (
	"fmt"
	"sort"
)

// Member is a single label of an enumeration.
type Member struct {
	Name  string
	Value int64
}

// Enum is the closed set of labels a Label field accepts.
type Enum struct {
	Name    string
	Members []Member
	// Textual enums are stored by name rather than by member value.
	Textual bool

	byName map[string]int
}

// NewEnum validates members and returns an Enum ordered by member value.
func NewEnum(name string, members []Member, textual bool) (*Enum, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("enum %s must have at least one member", name)
	}

	normalized := make([]Member, len(members))
	copy(normalized, members)
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Value < normalized[j].Value
	})

	e := &Enum{Name: name, Members: normalized, Textual: textual, byName: make(map[string]int, len(members))}
	seenValues := make(map[int64]struct{}, len(members))
	for i, m := range normalized {
		if m.Name == "" {
			return nil, fmt.Errorf("enum %s has a member with an empty name", name)
		}
		if _, dup := e.byName[m.Name]; dup {
			return nil, fmt.Errorf("enum %s has duplicate member name %s", name, m.Name)
		}
		if _, dup := seenValues[m.Value]; dup {
			return nil, fmt.Errorf("enum %s has duplicate member value %d", name, m.Value)
		}
		e.byName[m.Name] = i
		seenValues[m.Value] = struct{}{}
	}
	return e, nil
}

// EnumOf builds a textual Enum from labels, numbering members by position.
func EnumOf(name string, labels ...string) (*Enum, error) {
	members := make([]Member, len(labels))
	for i, label := range labels {
		members[i] = Member{Name: label, Value: int64(i)}
	}
	return NewEnum(name, members, true)
}

// Lookup finds a member by name. Matching is case-sensitive.
func (e *Enum) Lookup(name string) (Member, bool) {
	if e == nil {
		return Member{}, false
	}
	i, ok := e.byName[name]
	if !ok {
		return Member{}, false
	}
	return e.Members[i], true
}

// ByValue finds a member by its integral value.
func (e *Enum) ByValue(v int64) (Member, bool) {
	if e == nil {
		return Member{}, false
	}
	i := sort.Search(len(e.Members), func(i int) bool { return e.Members[i].Value >= v })
	if i < len(e.Members) && e.Members[i].Value == v {
		return e.Members[i], true
	}
	return Member{}, false
}

// Names returns the member names in value order.
func (e *Enum) Names() []string {
	names := make([]string, len(e.Members))
	for i, m := range e.Members {
		names[i] = m.Name
	}
	return names
}
