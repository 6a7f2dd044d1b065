// Package value defines Value, the recursive schema-less value type that every
// query in this module is evaluated against.
//
// Value is a sealed interface: only the variants declared in this package
// implement it, so type switches over a Value are exhaustive.
//
//	switch v := v.(type) {
//	case value.Null:
//	case value.Bool:
//	case value.Number:
//	case value.String:
//	case value.Bytes:
//	case value.List:
//	case value.Map:
//	case value.DateTime:
//	}
//
// Values are treated as immutable once built. The query engine only reads them,
// so a tree may be shared between goroutines as long as nobody mutates it.
package value

import (
	"time"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBytes
	KindList
	KindMap
	KindDateTime
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindBytes:    "bytes",
	KindList:     "list",
	KindMap:      "map",
	KindDateTime: "datetime",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a sealed interface implemented by Null, Bool, Number, String,
// Bytes, List, Map and DateTime.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the absence of a value. Lookups that miss resolve to Null.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) sealed()    {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) sealed()    {}

// String is a UTF-8 string value.
type String string

func (String) Kind() Kind { return KindString }
func (String) sealed()    {}

// Bytes is an opaque byte string.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (Bytes) sealed()    {}

// List is an ordered sequence of values.
type List []Value

func (List) Kind() Kind { return KindList }
func (List) sealed()    {}

// DateTime is a point in time.
type DateTime time.Time

func (DateTime) Kind() Kind { return KindDateTime }
func (DateTime) sealed()    {}

// Time returns the underlying time.Time.
func (d DateTime) Time() time.Time { return time.Time(d) }

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Lookup returns the value stored under name when v is a Map. A missing key,
// or any v that is not a Map, yields Null. Lookup never fails.
func Lookup(v Value, name string) Value {
	m, ok := v.(Map)
	if !ok {
		return Null{}
	}
	return m.Get(name)
}

// AsList returns v as a List when it is one.
func AsList(v Value) (List, bool) {
	l, ok := v.(List)
	return l, ok
}

// AsBool returns v as a Go bool when it is a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// normalize maps a nil interface to Null so callers never see a bare nil.
func normalize(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}
