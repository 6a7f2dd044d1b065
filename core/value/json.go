package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Marshal encodes v as JSON. Map keys come out sorted, bytes are base64
// encoded and date-times use RFC 3339.
func Marshal(v Value) ([]byte, error) {
	return json.Marshal(ToAny(v))
}

// Unmarshal decodes a single JSON document. Integral numbers are kept as
// integers; everything else numeric becomes a float.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := Decode(dec)
	if err != nil {
		return nil, err
	}
	// anything but end of input is trailing data, including a stray ']' or '}'
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}
	return v, nil
}

// Decode reads the next JSON value from dec. It returns io.EOF when the
// stream is exhausted.
func Decode(dec *json.Decoder) (Value, error) {
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("failed to decode JSON value: %w", err)
	}
	return From(raw), nil
}
