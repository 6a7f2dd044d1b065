package value

import (
	"bytes"
)

// Compare orders a against b. The boolean is false when the two values are
// not comparable, which is always the case for values of different kinds and
// for NaN. Compare never panics.
func Compare(a, b Value) (int, bool) {
	a, b = normalize(a), normalize(b)
	if a.Kind() != b.Kind() {
		return 0, false
	}

	switch av := a.(type) {
	case Null:
		return 0, true
	case Bool:
		bv := b.(Bool)
		switch {
		case av == bv:
			return 0, true
		case !bool(av):
			return -1, true
		default:
			return 1, true
		}
	case Number:
		return compareNumbers(av, b.(Number))
	case String:
		return cmp3(string(av), string(b.(String))), true
	case Bytes:
		return bytes.Compare(av, b.(Bytes)), true
	case DateTime:
		return av.Time().Compare(b.(DateTime).Time()), true
	case List:
		return compareLists(av, b.(List))
	case Map:
		return compareMaps(av, b.(Map))
	}
	return 0, false
}

func compareLists(a, b List) (int, bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		c, ok := Compare(a[i], b[i])
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmp3(int64(len(a)), int64(len(b))), true
}

// compareMaps walks both maps in key order comparing (key, value) pairs.
func compareMaps(a, b Map) (int, bool) {
	ak, bk := a.Keys(), b.Keys()
	n := min(len(ak), len(bk))
	for i := 0; i < n; i++ {
		if c := cmp3(ak[i], bk[i]); c != 0 {
			return c, true
		}
		c, ok := Compare(a.Get(ak[i]), b.Get(bk[i]))
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmp3(int64(len(ak)), int64(len(bk))), true
}

// Equal reports whether a and b hold the same value. Values of different
// kinds are never equal; numbers are compared by magnitude.
func Equal(a, b Value) bool {
	a, b = normalize(a), normalize(b)
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	case DateTime:
		return av.Time().Equal(b.(DateTime).Time())
	default:
		c, ok := Compare(a, b)
		return ok && c == 0
	}
}

// Contains reports whether list holds an element equal to v.
func Contains(list List, v Value) bool {
	for _, item := range list {
		if Equal(item, v) {
			return true
		}
	}
	return false
}
