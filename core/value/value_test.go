package value

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "map", KindMap.String())
	assert.Equal(t, "datetime", KindDateTime.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestLookup(t *testing.T) {
	doc := Map{
		"name":    String("Alice"),
		"address": Map{"city": String("Paris")},
	}

	assert.Equal(t, String("Alice"), Lookup(doc, "name"))
	assert.Equal(t, Map{"city": String("Paris")}, Lookup(doc, "address"))
	assert.Equal(t, Null{}, Lookup(doc, "missing"))
	assert.Equal(t, Null{}, Lookup(String("scalar"), "name"))
	assert.Equal(t, Null{}, Lookup(nil, "name"))
	assert.Equal(t, Null{}, Lookup(Map{"nil": nil}, "nil"))
}

func TestMap_KeysAreSorted(t *testing.T) {
	m := Map{"b": Int(2), "c": Int(3), "a": Int(1)}
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	var visited []string
	m.Range(func(key string, _ Value) bool {
		visited = append(visited, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, visited)
}

func TestMap_WithWithout(t *testing.T) {
	m := Map{"a": Int(1)}
	with := m.With("b", Int(2))
	assert.False(t, m.Has("b"))
	assert.True(t, with.Has("b"))

	without := with.Without("a")
	assert.True(t, with.Has("a"))
	assert.False(t, without.Has("a"))
	assert.Len(t, without, 1)
}

func TestNumber_Conversions(t *testing.T) {
	_, ok := Uint(math.MaxUint64).Int64()
	assert.False(t, ok)

	_, ok = Int(-1).Uint64()
	assert.False(t, ok)

	i, ok := Float(3).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)

	_, ok = Float(3.5).Int64()
	assert.False(t, ok)

	_, ok = Float(1 << 63).Int64()
	assert.False(t, ok)

	i, ok = Float(-(1 << 63)).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), i)

	u, ok := Float(1 << 63).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63), u)

	_, ok = Float(1 << 64).Uint64()
	assert.False(t, ok)

	assert.Equal(t, "42", Uint(42).String())
	assert.Equal(t, "-7", Int(-7).String())
	assert.Equal(t, "2.5", Float(2.5).String())
	assert.True(t, Float(1).IsFloat())
	assert.True(t, Int(1).IsInteger())
}

type person struct {
	Name  string   `json:"name"`
	Age   int      `json:"age"`
	Tags  []string `json:"tags,omitempty"`
	Skip  string   `json:"-"`
	Score float64  `json:"score"`
}

func TestFrom(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"value passthrough", String("x"), String("x")},
		{"bool", true, Bool(true)},
		{"int", 5, Int(5)},
		{"int8", int8(-3), Int(-3)},
		{"uint32", uint32(7), Uint(7)},
		{"float32", float32(1.5), Float(1.5)},
		{"string", "hello", String("hello")},
		{"bytes", []byte("ab"), Bytes("ab")},
		{"time", when, DateTime(when)},
		{"json number int", json.Number("12"), Int(12)},
		{"json number big", json.Number("18446744073709551615"), Uint(math.MaxUint64)},
		{"json number float", json.Number("1.25"), Float(1.25)},
		{"any slice", []any{1, "a"}, List{Int(1), String("a")}},
		{"typed slice", []string{"a", "b"}, List{String("a"), String("b")}},
		{"nil slice", []int(nil), Null{}},
		{"any map", map[string]any{"k": 1}, Map{"k": Int(1)}},
		{"typed map", map[string]bool{"k": true}, Map{"k": Bool(true)}},
		{"pointer", func() any { s := "p"; return &s }(), String("p")},
		{"nil pointer", (*string)(nil), Null{}},
		{"struct", person{Name: "Bob", Age: 30, Skip: "no", Score: 1.5},
			Map{"name": String("Bob"), "age": Int(30), "score": Float(1.5)}},
		{"non string map falls back", map[int]int{1: 2}, String("map[1:2]")},
		{"channel falls back", (chan int)(nil), String("<nil>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.in)
			assert.True(t, Equal(tt.want, got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestFromStruct_Errors(t *testing.T) {
	_, err := FromStruct(nil)
	assert.Error(t, err)

	_, err = FromStruct((*person)(nil))
	assert.Error(t, err)

	_, err = FromStruct(42)
	assert.ErrorContains(t, err, "must be a struct")

	v, err := FromStruct(&person{Name: "Ann", Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, List{String("x")}, Lookup(v, "tags"))
}

func TestToAny(t *testing.T) {
	in := Map{
		"n":    Null{},
		"i":    Int(-1),
		"u":    Uint(2),
		"f":    Float(0.5),
		"list": List{Bool(true), String("s")},
	}
	got := ToAny(in)
	assert.Equal(t, map[string]any{
		"n":    nil,
		"i":    int64(-1),
		"u":    uint64(2),
		"f":    0.5,
		"list": []any{true, "s"},
	}, got)
	assert.Nil(t, ToAny(nil))
}

func TestJSONRoundTrip(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"name":"Alice","age":30,"ratio":0.5,"tags":["a","b"],"nested":{"ok":true,"nil":null}}`))
	require.NoError(t, err)

	assert.Equal(t, String("Alice"), Lookup(doc, "name"))
	assert.Equal(t, Int(30), Lookup(doc, "age"))
	assert.Equal(t, Float(0.5), Lookup(doc, "ratio"))
	assert.Equal(t, Bool(true), Lookup(Lookup(doc, "nested"), "ok"))
	assert.Equal(t, Null{}, Lookup(Lookup(doc, "nested"), "nil"))

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alice","age":30,"ratio":0.5,"tags":["a","b"],"nested":{"ok":true,"nil":null}}`, string(out))
}

func TestUnmarshal_Errors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`1 2`))
	assert.ErrorContains(t, err, "unexpected data")

	for _, trailing := range []string{`{"a":1} ]`, `{"a":1}}`, `[1] ,`} {
		_, err = Unmarshal([]byte(trailing))
		assert.ErrorContains(t, err, "unexpected data", trailing)
	}

	v, err := Unmarshal([]byte(" {\"a\":1} \n"))
	assert.NoError(t, err)
	assert.Equal(t, Map{"a": Int(1)}, v)
}

func TestMerge(t *testing.T) {
	base := Map{
		"name":    String("Alice"),
		"tags":    List{String("a")},
		"address": Map{"city": String("Paris"), "zip": String("75001")},
	}
	patch := Map{
		"name":    String("Alicia"),
		"tags":    List{String("b")},
		"address": Map{"city": String("Lyon")},
		"age":     Int(31),
	}

	got := Merge(base, patch)
	assert.True(t, Equal(Map{
		"name":    String("Alicia"),
		"tags":    List{String("a"), String("b")},
		"address": Map{"city": String("Lyon"), "zip": String("75001")},
		"age":     Int(31),
	}, got))

	// inputs are untouched
	assert.Equal(t, String("Alice"), base.Get("name"))
	assert.Len(t, base.Get("tags"), 1)

	assert.Equal(t, List{Int(1), Int(2)}, Merge(List{Int(1)}, Int(2)))
	assert.Equal(t, String("b"), Merge(String("a"), String("b")))
	assert.Equal(t, Int(1), Merge(Map{"a": Int(1)}, Int(1)))
}

func TestClone(t *testing.T) {
	orig := Map{
		"name":  String("Rasmus"),
		"tags":  List{String("a"), Map{"deep": Int(1)}},
		"pet":   Map{"type": String("cat")},
		"bytes": Bytes("raw"),
		"none":  nil,
	}
	cp := Clone(orig).(Map)
	assert.True(t, Equal(orig, cp))

	cp["name"] = String("Freja")
	cp["pet"].(Map)["type"] = String("dog")
	cp["tags"].(List)[1].(Map)["deep"] = Int(2)
	cp["bytes"].(Bytes)[0] = 'R'

	assert.Equal(t, String("Rasmus"), orig["name"])
	assert.Equal(t, String("cat"), Lookup(orig["pet"], "type"))
	assert.Equal(t, Int(1), orig["tags"].(List)[1].(Map)["deep"])
	assert.Equal(t, Bytes("raw"), orig["bytes"])
	assert.Equal(t, Null{}, cp["none"])

	assert.Equal(t, Null{}, Clone(nil))
	assert.Equal(t, Int(3), Clone(Int(3)))
}
