package value

import (
	"math"
	"strconv"
)

type numberRepr uint8

// Bounds of the integer representations as exact float64 values.
const (
	minInt64Float  = -9223372036854775808.0 // -2^63
	maxInt64Float  = 9223372036854775808.0  // 2^63, exclusive
	maxUint64Float = 18446744073709551616.0 // 2^64, exclusive
)

const (
	reprInt numberRepr = iota
	reprUint
	reprFloat
)

// Number unifies signed, unsigned and floating point magnitudes. Two numbers
// are equal when they denote the same quantity, whatever their representation.
type Number struct {
	repr numberRepr
	i    int64
	u    uint64
	f    float64
}

func (Number) Kind() Kind { return KindNumber }
func (Number) sealed()    {}

// Int builds a signed integer Number.
func Int(i int64) Number { return Number{repr: reprInt, i: i} }

// Uint builds an unsigned integer Number.
func Uint(u uint64) Number { return Number{repr: reprUint, u: u} }

// Float builds a floating point Number.
func Float(f float64) Number { return Number{repr: reprFloat, f: f} }

// IsFloat reports whether n is held as a float.
func (n Number) IsFloat() bool { return n.repr == reprFloat }

// IsInteger reports whether n is held as a signed or unsigned integer.
func (n Number) IsInteger() bool { return n.repr != reprFloat }

// Int64 returns n as an int64 and whether the conversion is exact.
func (n Number) Int64() (int64, bool) {
	switch n.repr {
	case reprInt:
		return n.i, true
	case reprUint:
		return int64(n.u), n.u <= math.MaxInt64
	default:
		return int64(n.f), n.f == math.Trunc(n.f) && n.f >= minInt64Float && n.f < maxInt64Float
	}
}

// Uint64 returns n as a uint64 and whether the conversion is exact.
func (n Number) Uint64() (uint64, bool) {
	switch n.repr {
	case reprInt:
		return uint64(n.i), n.i >= 0
	case reprUint:
		return n.u, true
	default:
		return uint64(n.f), n.f == math.Trunc(n.f) && n.f >= 0 && n.f < maxUint64Float
	}
}

// Float64 returns n as a float64. Large integers may lose precision.
func (n Number) Float64() float64 {
	switch n.repr {
	case reprInt:
		return float64(n.i)
	case reprUint:
		return float64(n.u)
	default:
		return n.f
	}
}

// String formats n in its natural representation.
func (n Number) String() string {
	switch n.repr {
	case reprInt:
		return strconv.FormatInt(n.i, 10)
	case reprUint:
		return strconv.FormatUint(n.u, 10)
	default:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
}

func (n Number) isNaN() bool {
	return n.repr == reprFloat && math.IsNaN(n.f)
}

// compareNumbers orders two numbers. NaN is not comparable with anything.
// Integers are compared with floats exactly, without going through float64.
func compareNumbers(a, b Number) (int, bool) {
	if a.isNaN() || b.isNaN() {
		return 0, false
	}
	switch {
	case a.repr == reprFloat && b.repr == reprFloat:
		return cmp3(a.f, b.f), true
	case a.repr == reprFloat:
		return -compareIntegerFloat(b, a.f), true
	case b.repr == reprFloat:
		return compareIntegerFloat(a, b.f), true
	}
	return compareIntegers(a, b), true
}

func compareIntegers(a, b Number) int {
	aNeg := a.repr == reprInt && a.i < 0
	bNeg := b.repr == reprInt && b.i < 0
	switch {
	case aNeg && !bNeg:
		return -1
	case !aNeg && bNeg:
		return 1
	case aNeg && bNeg:
		return cmp3(a.i, b.i)
	}
	au, _ := a.Uint64()
	bu, _ := b.Uint64()
	return cmp3(au, bu)
}

// compareIntegerFloat orders the integer n against the non-NaN float f by
// comparing n with the integral part of f first, then with its fraction.
func compareIntegerFloat(n Number, f float64) int {
	if f >= maxUint64Float {
		return -1
	}
	if f < minInt64Float {
		return 1
	}

	whole := math.Trunc(f)
	var w Number
	if whole < 0 {
		w = Int(int64(whole))
	} else {
		w = Uint(uint64(whole))
	}
	if c := compareIntegers(n, w); c != 0 {
		return c
	}

	switch frac := f - whole; {
	case frac > 0:
		return -1
	case frac < 0:
		return 1
	default:
		return 0
	}
}

func cmp3[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
