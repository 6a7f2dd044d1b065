package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// From converts a Go value into a Value. It is total: anything it does not
// recognise is rendered through fmt and stored as a String.
//
// Recognised inputs are nil, Value, bool, every integer and float type,
// string, []byte, time.Time, json.Number, slices and arrays, maps with string
// keys, and structs (through their JSON encoding, so `json` tags apply).
func From(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return normalize(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case []byte:
		return Bytes(x)
	case time.Time:
		return DateTime(x)
	case json.Number:
		return fromJSONNumber(x)
	case []any:
		list := make(List, len(x))
		for i, item := range x {
			list[i] = From(item)
		}
		return list
	case map[string]any:
		m := make(Map, len(x))
		for k, item := range x {
			m[k] = From(item)
		}
		return m
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null{}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		return From(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}
		}
		list := make(List, rv.Len())
		for i := range list {
			list[i] = From(rv.Index(i).Interface())
		}
		return list
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = From(iter.Value().Interface())
		}
		return m
	case reflect.Struct:
		if v, err := FromStruct(rv.Interface()); err == nil {
			return v
		}
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	}
	return String(fmt.Sprint(rv.Interface()))
}

// FromStruct converts a struct, or a pointer to one, into a Map.
//
// The struct is marshalled to JSON first, so `json:"tag"` annotations,
// `omitempty` and custom marshalers are honoured, and the result is decoded
// back into a Value tree.
func FromStruct(record any) (Value, error) {
	rv := reflect.ValueOf(record)
	if !rv.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", rv.Kind())
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("FromStruct: failed to marshal input record to JSON: %w", err)
	}
	v, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("FromStruct: failed to decode JSON: %w", err)
	}
	return v, nil
}

// ToAny converts v back into plain Go values: nil, bool, int64, uint64,
// float64, string, []byte, time.Time, []any and map[string]any.
func ToAny(v Value) any {
	switch x := normalize(v).(type) {
	case Null:
		return nil
	case Bool:
		return bool(x)
	case Number:
		switch x.repr {
		case reprInt:
			return x.i
		case reprUint:
			return x.u
		default:
			return x.f
		}
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case DateTime:
		return x.Time()
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToAny(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = ToAny(item)
		}
		return out
	}
	return nil
}

func fromJSONNumber(n json.Number) Value {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint(u)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return String(s)
}
