package query

import (
	"reflect"
	"strings"
)

// valuesEqual reports whether two cell values are equal. Numeric values
// compare across integer widths and float64 (the SQLite backend decodes
// JSON numbers), strings and bools compare directly, anything else falls
// back to deep equality.
func valuesEqual(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two cell values. Returns (-1|0|1, true) when the
// values are comparable: both numeric, both strings, or both bools
// (false < true). Mismatched or unsupported kinds return (0, false).
func compareValues(a, b any) (int, bool) {
	if an, aok := asNumber(a); aok {
		bn, bok := asNumber(b)
		if !bok {
			return 0, false
		}
		return an.compare(bn), true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case bv:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

// number is a cell value coerced to a comparable numeric form. Integer
// values keep int64 precision; floats compare as float64.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) compare(o number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		default:
			return 0
		}
	}
	nf, of := n.float(), o.float()
	switch {
	case nf < of:
		return -1
	case nf > of:
		return 1
	default:
		return 0
	}
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n)}, true
	case int8:
		return number{i: int64(n)}, true
	case int16:
		return number{i: int64(n)}, true
	case int32:
		return number{i: int64(n)}, true
	case int64:
		return number{i: n}, true
	case uint:
		return number{i: int64(n)}, true
	case uint8:
		return number{i: int64(n)}, true
	case uint16:
		return number{i: int64(n)}, true
	case uint32:
		return number{i: int64(n)}, true
	case float32:
		return number{f: float64(n), isFloat: true}, true
	case float64:
		// Integral floats keep integer comparison semantics so JSON
		// round-tripped ids compare equal to their int64 originals.
		if i := int64(n); float64(i) == n {
			return number{i: i}, true
		}
		return number{f: n, isFloat: true}, true
	default:
		return number{}, false
	}
}
