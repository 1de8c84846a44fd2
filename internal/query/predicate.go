package query

import "strings"

// Operator is a comparison operator accepted by Where.
type Operator string

const (
	OpEq  Operator = "="
	OpNeq Operator = "!="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// valid reports whether the operator is one of the accepted six.
func (o Operator) valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		return true
	default:
		return false
	}
}

// Predicate represents one filter condition.
//
// This is a sealed interface - only types in this package implement it.
// All predicates on a builder combine by logical AND.
//
// Predicate types:
//   - Compare: field <op> literal for the six comparison operators
//   - In: field is a member of a value set
//   - Like: field matches a %-wildcard string pattern
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Compare is a field-operator-literal predicate.
type Compare struct {
	Field string
	Op    Operator
	Value any
}

func (Compare) predicateNode() {}

// In is a membership predicate: the field value must equal one of Values.
type In struct {
	Field  string
	Values []any
}

func (In) predicateNode() {}

// Like is a string pattern predicate. A % at either end of Pattern marks
// an unanchored wildcard (prefix/suffix/substring match per position);
// with no %, the match is exact. Matching is case-sensitive. A % anywhere
// else is a literal character.
type Like struct {
	Field   string
	Pattern string
}

func (Like) predicateNode() {}

// predicateField returns the column a predicate references.
func predicateField(p Predicate) string {
	switch pred := p.(type) {
	case Compare:
		return pred.Field
	case In:
		return pred.Field
	case Like:
		return pred.Field
	default:
		return ""
	}
}

// matches evaluates one predicate against a row.
func matches(p Predicate, row map[string]any) bool {
	switch pred := p.(type) {
	case Compare:
		return matchCompare(pred, row[pred.Field])
	case In:
		for _, v := range pred.Values {
			if valuesEqual(row[pred.Field], v) {
				return true
			}
		}
		return false
	case Like:
		s, ok := row[pred.Field].(string)
		if !ok {
			return false
		}
		return matchLike(s, pred.Pattern)
	default:
		return false
	}
}

func matchCompare(pred Compare, cell any) bool {
	switch pred.Op {
	case OpEq:
		return valuesEqual(cell, pred.Value)
	case OpNeq:
		return !valuesEqual(cell, pred.Value)
	}
	// Ordered operators: values of mismatched kinds are unordered and
	// never satisfy the comparison.
	c, ok := compareValues(cell, pred.Value)
	if !ok {
		return false
	}
	switch pred.Op {
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	default:
		return false
	}
}

// matchLike implements %-wildcard matching per the Like contract.
func matchLike(s, pattern string) bool {
	if pattern == "%" {
		return true
	}
	prefixWild := strings.HasPrefix(pattern, "%")
	core := strings.TrimPrefix(pattern, "%")
	suffixWild := strings.HasSuffix(core, "%")
	core = strings.TrimSuffix(core, "%")

	switch {
	case prefixWild && suffixWild:
		return strings.Contains(s, core)
	case prefixWild:
		return strings.HasSuffix(s, core)
	case suffixWild:
		return strings.HasPrefix(s, core)
	default:
		return s == pattern
	}
}
