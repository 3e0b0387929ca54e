// Package document implements the order-preserving configuration tree used by
// vm-settings.yml, its YAML codec, the recursive merge and the comment
// preserving writer.
//
// Values stored in a Map are scalars (string, integer and float kinds, bool,
// nil), sequences ([]any) of scalars or of *Map, and nested *Map values.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
)

// Map is an ordered mapping from string keys to configuration values.
// The zero value is not usable; call NewMap.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating keys and values.
// It panics on an odd argument count or a non-string key.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("document.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("document.MapOf: key %v is not a string", pairs[i]))
		}
		m.Set(key, pairs[i+1])
	}
	return m
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present, even with a nil value.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores value under key. Existing keys keep their position, new keys
// are appended.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetDefault stores value under key only when key is absent.
// Returns true when the value was stored.
func (m *Map) SetDefault(key string, value any) bool {
	if m.Has(key) {
		return false
	}
	m.Set(key, value)
	return true
}

// Delete removes key. Returns false when key was absent.
func (m *Map) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// RenameKey renames oldKey to newKey in place, keeping its position and value.
// It fails with an invariant error when oldKey is absent or newKey is taken.
func (m *Map) RenameKey(oldKey, newKey string) error {
	if !m.Has(oldKey) {
		return draftErrors.InvariantError(fmt.Sprintf("key %q does not exist in the configuration", oldKey))
	}
	if oldKey == newKey {
		return nil
	}
	if m.Has(newKey) {
		return draftErrors.InvariantError(fmt.Sprintf("cannot rename %q: key %q already exists", oldKey, newKey))
	}
	for i, k := range m.keys {
		if k == oldKey {
			m.keys[i] = newKey
			break
		}
	}
	m.values[newKey] = m.values[oldKey]
	delete(m.values, oldKey)
	return nil
}

// Lookup follows path through nested maps and returns the value at its end.
// The boolean is false when any segment is missing or not a map.
func (m *Map) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return m, true
	}
	current := m
	for i, key := range path {
		v, ok := current.Get(key)
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := v.(*Map)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// LookupMap is Lookup restricted to map values.
func (m *Map) LookupMap(path ...string) (*Map, bool) {
	v, ok := m.Lookup(path...)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Map)
	return sub, ok
}

// LookupString is Lookup restricted to string values.
func (m *Map) LookupString(path ...string) (string, bool) {
	v, ok := m.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetPath stores value at path, creating intermediate maps. Intermediate
// values that are not maps are replaced.
func (m *Map) SetPath(value any, path ...string) {
	if len(path) == 0 {
		return
	}
	current := m
	for _, key := range path[:len(path)-1] {
		next, ok := current.values[key].(*Map)
		if !ok {
			next = NewMap()
			current.Set(key, next)
		}
		current = next
	}
	current.Set(path[len(path)-1], value)
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	out := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// Equal reports deep equality including key order.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !valuesEqual(m.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object in key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the map as YAML, or an error marker if it cannot be encoded.
func (m *Map) String() string {
	text, err := Serialize(m)
	if err != nil {
		return fmt.Sprintf("<invalid document: %v>", err)
	}
	return strings.TrimSuffix(text, "\n")
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func valuesEqual(a, b any) bool {
	switch at := a.(type) {
	case *Map:
		bt, ok := b.(*Map)
		return ok && at.Equal(bt)
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valuesEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
