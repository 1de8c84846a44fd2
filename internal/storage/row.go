package storage

import "fmt"

// IDField is the reserved field name that carries a row's unique identifier.
const IDField = "id"

// Row represents a single table row.
// Key = column name, Value = cell value.
type Row map[string]any

// Copy returns a shallow copy of the row. Cell values are assumed to be
// scalars; adapters never mutate values in place.
func (r Row) Copy() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// ID returns the row's identifier in normalized form, or nil if unset.
func (r Row) ID() any {
	v, ok := r[IDField]
	if !ok {
		return nil
	}
	id, err := NormalizeID(v)
	if err != nil {
		return nil
	}
	return id
}

// NormalizeID coerces an identifier to its canonical representation:
// int64 for integer ids, string for string ids.
//
// Integer-valued float64 values are accepted because JSON round trips
// through the SQLite backend decode numbers that way.
func NormalizeID(v any) (any, error) {
	switch id := v.(type) {
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	case int32:
		return int64(id), nil
	case uint:
		return int64(id), nil
	case uint32:
		return int64(id), nil
	case float64:
		n := int64(id)
		if float64(n) != id {
			return nil, fmt.Errorf("non-integer id %v", id)
		}
		return n, nil
	case string:
		if id == "" {
			return nil, fmt.Errorf("empty string id")
		}
		return id, nil
	case nil:
		return nil, fmt.Errorf("nil id")
	default:
		return nil, fmt.Errorf("unsupported id type %T", v)
	}
}
