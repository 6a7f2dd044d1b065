package value

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name   string
		a, b   Value
		want   int
		wantOK bool
	}{
		{"null", Null{}, Null{}, 0, true},
		{"nil is null", nil, Null{}, 0, true},
		{"false before true", Bool(false), Bool(true), -1, true},
		{"true equal", Bool(true), Bool(true), 0, true},
		{"ints", Int(1), Int(2), -1, true},
		{"int vs uint", Int(-1), Uint(0), -1, true},
		{"uint vs int", Uint(math.MaxUint64), Int(math.MaxInt64), 1, true},
		{"int vs float", Int(3), Float(2.5), 1, true},
		{"same magnitude", Uint(30), Int(30), 0, true},
		{"float vs int", Float(2.5), Int(3), -1, true},
		{"int above float precision", Int(1<<53 + 1), Float(1 << 53), 1, true},
		{"large int equals float", Int(1 << 62), Float(1 << 62), 0, true},
		{"max uint below 2^64", Uint(math.MaxUint64), Float(math.MaxUint64), -1, true},
		{"negative fraction", Int(-3), Float(-2.5), -1, true},
		{"zero vs negative fraction", Int(0), Float(-0.5), 1, true},
		{"float below int64 range", Int(math.MinInt64), Float(-1e19), 1, true},
		{"positive infinity", Uint(math.MaxUint64), Float(math.Inf(1)), -1, true},
		{"negative infinity", Int(math.MinInt64), Float(math.Inf(-1)), 1, true},
		{"nan", Float(math.NaN()), Float(1), 0, false},
		{"strings", String("abc"), String("abd"), -1, true},
		{"bytes", Bytes("b"), Bytes("a"), 1, true},
		{"datetime", DateTime(early), DateTime(late), -1, true},
		{"lists elementwise", List{Int(1), Int(3)}, List{Int(1), Int(2)}, 1, true},
		{"lists by length", List{Int(1)}, List{Int(1), Int(2)}, -1, true},
		{"lists incomparable element", List{Int(1)}, List{String("1")}, 0, false},
		{"maps by key", Map{"a": Int(1)}, Map{"b": Int(1)}, -1, true},
		{"maps by value", Map{"a": Int(2)}, Map{"a": Int(1)}, 1, true},
		{"kind mismatch", Int(1), String("1"), 0, false},
		{"null vs value", Null{}, Int(0), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	when := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	paris, _ := time.LoadLocation("Europe/Paris")

	assert.True(t, Equal(Int(30), Uint(30)))
	assert.True(t, Equal(Int(2), Float(2)))
	assert.False(t, Equal(Int(1<<53+1), Float(1<<53)))
	assert.False(t, Equal(Float(math.MaxUint64), Uint(math.MaxUint64)))
	assert.False(t, Equal(Int(1), String("1")))
	assert.False(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.True(t, Equal(List{Int(1), Map{"a": String("x")}}, List{Uint(1), Map{"a": String("x")}}))
	assert.False(t, Equal(Map{"a": Int(1)}, Map{"b": Int(1)}))
	assert.False(t, Equal(List{Int(1)}, List{Int(1), Int(1)}))
	assert.True(t, Equal(Map{"a": nil}, Map{"a": Null{}}))
	if paris != nil {
		assert.True(t, Equal(DateTime(when), DateTime(when.In(paris))))
	}
}

func TestContains(t *testing.T) {
	list := List{String("a"), Int(2)}
	assert.True(t, Contains(list, String("a")))
	assert.True(t, Contains(list, Uint(2)))
	assert.False(t, Contains(list, String("2")))
	assert.False(t, Contains(nil, Null{}))
}

func TestFormat(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	assert.Equal(t, "null", Format(nil))
	assert.Equal(t, `"cat"`, Format(String("cat")))
	assert.Equal(t, "0x6162", Format(Bytes("ab")))
	assert.Equal(t, "2024-05-06T07:08:09Z", Format(DateTime(when)))
	assert.Equal(t, `[1, "a", true]`, Format(List{Int(1), String("a"), Bool(true)}))
	assert.Equal(t, `{a: 1.5, b: {c: null}}`, Format(Map{"b": Map{"c": Null{}}, "a": Float(1.5)}))
}
