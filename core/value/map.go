package value

import (
	"slices"
)

// Map is a string-keyed collection of values. Iteration through Keys or
// Range is always in ascending key order.
type Map map[string]Value

func (Map) Kind() Kind { return KindMap }
func (Map) sealed()    {}

// Get returns the value stored under name, or Null when it is absent.
func (m Map) Get(name string) Value {
	v, ok := m[name]
	if !ok {
		return Null{}
	}
	return normalize(v)
}

// Has reports whether name is present.
func (m Map) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Keys returns the keys in ascending order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Range calls fn for every entry in key order until fn returns false.
func (m Map) Range(fn func(key string, v Value) bool) {
	for _, k := range m.Keys() {
		if !fn(k, m.Get(k)) {
			return
		}
	}
}

// With returns a copy of m with name set to v. m itself is left untouched.
func (m Map) With(name string, v Value) Map {
	out := make(Map, len(m)+1)
	for k, existing := range m {
		out[k] = existing
	}
	out[name] = normalize(v)
	return out
}

// Without returns a copy of m without name.
func (m Map) Without(name string) Map {
	out := make(Map, len(m))
	for k, existing := range m {
		if k != name {
			out[k] = existing
		}
	}
	return out
}
