package value

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Format renders v in a compact, human-readable form: strings are quoted,
// lists use brackets and maps use braces with keys in sorted order.
func Format(v Value) string {
	var sb strings.Builder
	writeValue(&sb, normalize(v))
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(bool(x)))
	case Number:
		sb.WriteString(x.String())
	case String:
		sb.WriteString(strconv.Quote(string(x)))
	case Bytes:
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString(x))
	case DateTime:
		sb.WriteString(x.Time().Format(time.RFC3339Nano))
	case List:
		sb.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, normalize(item))
		}
		sb.WriteByte(']')
	case Map:
		sb.WriteByte('{')
		for i, k := range x.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			writeValue(sb, x.Get(k))
		}
		sb.WriteByte('}')
	}
}
