package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/tabular/internal/storage"
)

// encodeID renders an id as the row_id key. Integer and string ids live in
// distinct namespaces so int64(1) and "1" never collide.
func encodeID(id any) (string, error) {
	norm, err := storage.NormalizeID(id)
	if err != nil {
		return "", err
	}
	switch v := norm.(type) {
	case int64:
		return fmt.Sprintf("i:%d", v), nil
	case string:
		return "s:" + v, nil
	default:
		return "", fmt.Errorf("unsupported id type %T", norm)
	}
}

// marshalRow serializes a row to its JSON document form.
func marshalRow(row storage.Row) ([]byte, error) {
	return json.Marshal(map[string]any(row))
}

// unmarshalRow decodes a JSON document back into a row. Numbers decode via
// json.Number so integer cells come back as int64 rather than float64;
// without this, ids would not round trip.
func unmarshalRow(doc []byte) (storage.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode row document: %w", err)
	}

	row := make(storage.Row, len(raw))
	for k, v := range raw {
		row[k] = reviveNumbers(v)
	}
	return row, nil
}

// reviveNumbers converts json.Number values (recursively, for nested maps
// and arrays) to int64 when integral, float64 otherwise.
func reviveNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = reviveNumbers(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = reviveNumbers(elem)
		}
		return out
	default:
		return v
	}
}
