package value

// Merge combines b into a and returns the result without touching either
// input.
//
//   - Map + Map: keys of b are merged recursively into a.
//   - List + List: b is appended to a.
//   - List + anything else: b is appended as a single element.
//   - otherwise b replaces a.
func Merge(a, b Value) Value {
	a, b = normalize(a), normalize(b)
	switch av := a.(type) {
	case Map:
		bv, ok := b.(Map)
		if !ok {
			return b
		}
		out := make(Map, len(av)+len(bv))
		for k, v := range av {
			out[k] = v
		}
		for k, v := range bv {
			existing, ok := out[k]
			if !ok {
				existing = Null{}
			}
			out[k] = Merge(existing, v)
		}
		return out
	case List:
		out := make(List, 0, len(av)+1)
		out = append(out, av...)
		if bv, ok := b.(List); ok {
			return append(out, bv...)
		}
		return append(out, b)
	}
	return b
}

// Clone returns a deep copy of v. Maps, lists and byte strings are copied
// recursively; every other kind is immutable and returned as is. A nil v
// clones to Null.
func Clone(v Value) Value {
	switch t := normalize(v).(type) {
	case Map:
		out := make(Map, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case List:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case Bytes:
		return Bytes(append([]byte(nil), t...))
	default:
		return t
	}
}
