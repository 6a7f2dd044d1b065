package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/asaidimu/go-sift/core/value"
	"gopkg.in/yaml.v3"
)

// resolveFormat picks the input format for a file. "auto" and the empty
// string select YAML for .yaml and .yml files and JSON otherwise.
func resolveFormat(format, path string) string {
	if format != "" && format != "auto" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// readDocuments decodes every document in r. JSON input is either a single
// array of documents or a stream of documents, such as JSON lines. YAML input
// is a sequence of documents or a single mapping.
func readDocuments(r io.Reader, format string) ([]value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	var docs []value.Value
	switch format {
	case "json":
		docs, err = decodeJSON(data)
	case "yaml":
		docs, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		if _, ok := doc.(value.Map); !ok {
			return nil, fmt.Errorf("document %d is a %s, expected an object", i, doc.Kind())
		}
	}
	return docs, nil
}

func decodeJSON(data []byte) ([]value.Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		v, err := value.Unmarshal(trimmed)
		if err != nil {
			return nil, err
		}
		list, _ := value.AsList(v)
		return list, nil
	}

	var docs []value.Value
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		v, err := value.Decode(dec)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs), err)
		}
		docs = append(docs, v)
	}
}

func decodeYAML(data []byte) ([]value.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	switch x := value.From(raw).(type) {
	case value.Null:
		return nil, nil
	case value.List:
		return x, nil
	default:
		return []value.Value{x}, nil
	}
}
