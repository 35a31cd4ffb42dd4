package shape

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nlstn/go-rql/internal/value"
)

var enumRegistry = struct {
	sync.RWMutex
	data map[reflect.Type]*value.Enum
}{
	data: make(map[reflect.Type]*value.Enum),
}

// RegisterEnum registers the labels of a named integral or string type.
// Register enums before the first shape that uses them is analyzed; shapes are cached.
func RegisterEnum(enumType reflect.Type, members []value.Member) error {
	if enumType == nil {
		return fmt.Errorf("enum type cannot be nil")
	}
	if enumType.Name() == "" {
		return fmt.Errorf("enum type %s must be a named type", enumType)
	}

	var textual bool
	switch enumType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	case reflect.String:
		textual = true
	default:
		return fmt.Errorf("enum type %s must be an integral or string type", enumType)
	}

	enum, err := value.NewEnum(enumType.Name(), members, textual)
	if err != nil {
		return err
	}

	enumRegistry.Lock()
	defer enumRegistry.Unlock()
	enumRegistry.data[enumType] = enum
	return nil
}

// ResolveEnum returns the labels of t, consulting the registry first and then
// an EnumMembers() map[string]<integer> method on t.
func ResolveEnum(t reflect.Type) (*value.Enum, bool, error) {
	if t.Name() == "" || t.PkgPath() == "" {
		return nil, false, nil
	}

	enumRegistry.RLock()
	enum, ok := enumRegistry.data[t]
	enumRegistry.RUnlock()
	if ok {
		return enum, true, nil
	}

	members, err := enumMembersViaMethod(t)
	if err != nil || members == nil {
		return nil, false, err
	}
	if err := RegisterEnum(t, members); err != nil {
		return nil, false, err
	}

	enumRegistry.RLock()
	defer enumRegistry.RUnlock()
	return enumRegistry.data[t], true, nil
}

// enumMembersViaMethod calls EnumMembers() on the zero value of t.
func enumMembersViaMethod(t reflect.Type) ([]value.Member, error) {
	method := reflect.New(t).MethodByName("EnumMembers")
	if !method.IsValid() {
		return nil, nil
	}

	mt := method.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 || mt.Out(0).Kind() != reflect.Map || mt.Out(0).Key().Kind() != reflect.String {
		return nil, fmt.Errorf("EnumMembers method on type %s must have signature EnumMembers() map[string]<integer>", t.Name())
	}

	result := method.Call(nil)[0]
	if result.IsNil() || result.Len() == 0 {
		return nil, fmt.Errorf("EnumMembers method on type %s returned no members", t.Name())
	}

	members := make([]value.Member, 0, result.Len())
	iter := result.MapRange()
	for iter.Next() {
		v, err := value.FromReflect(value.Integer, iter.Value(), nil)
		if err != nil {
			return nil, fmt.Errorf("enum type %s member %s: %w", t.Name(), iter.Key().String(), err)
		}
		members = append(members, value.Member{Name: iter.Key().String(), Value: v.Integer()})
	}
	return members, nil
}
