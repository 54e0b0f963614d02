package predicate

import (
	"regexp"
	"strings"

	"github.com/zenithds/zenithds/internal/domain"
)

const (
	// FilenamePrefix marks a predicate that applies to file names rather than rows.
	FilenamePrefix = "__"
	// HasMarker is an alternative leading marker for filename predicates:
	// "HAS <pattern> <op> <value>" parses the same as "__<pattern> <op> <value>".
	HasMarker = "HAS "
)

// grammar is `<field> <op> <value>`. The field is matched lazily so the first
// operator token wins and the value may itself contain operators or be empty.
var grammar = regexp.MustCompile(`^(.+?) (==|!=|<=|>=|<|>|IN|CONTAINS) (.*)$`)

// Operator is a comparison operator.
type Operator string

const (
	// EQ is string equality.
	EQ Operator = "=="
	// NE is string inequality.
	NE Operator = "!="
	// LT is lexicographic less-than.
	LT Operator = "<"
	// GT is lexicographic greater-than.
	GT Operator = ">"
	// LE is lexicographic less-or-equal.
	LE Operator = "<="
	// GE is lexicographic greater-or-equal.
	GE Operator = ">="
	// Contains is a substring test of the predicate value inside the candidate.
	Contains Operator = "IN"
)

// ParseOperator maps an operator token to an Operator. CONTAINS is an alias of IN.
func ParseOperator(tok string) (Operator, bool) {
	switch tok {
	case "==":
		return EQ, true
	case "!=":
		return NE, true
	case "<":
		return LT, true
	case ">":
		return GT, true
	case "<=":
		return LE, true
	case ">=":
		return GE, true
	case "IN", "CONTAINS":
		return Contains, true
	default:
		return "", false
	}
}

// Predicate is a single condition over a field (immutable value object).
type Predicate struct {
	field string
	op    Operator
	value string
}

// New creates a Predicate.
func New(field string, op Operator, value string) Predicate {
	return Predicate{field: field, op: op, value: value}
}

// Parse parses a raw predicate string of the form `[HAS ]<field> <op> <value>`.
func Parse(raw string) (Predicate, error) {
	body, prefix := raw, ""
	if strings.HasPrefix(raw, HasMarker) {
		body, prefix = strings.TrimPrefix(raw, HasMarker), FilenamePrefix
	}
	m := grammar.FindStringSubmatch(body)
	if m == nil {
		return Predicate{}, domain.NewPredicateError(raw, "expected `<field> <op> <value>`")
	}
	op, ok := ParseOperator(m[2])
	if !ok {
		return Predicate{}, domain.NewPredicateError(raw, "unknown operator "+m[2])
	}
	return New(prefix+m[1], op, m[3]), nil
}

// Field returns the field name (or, for filename predicates, the prefixed pattern).
func (p Predicate) Field() string { return p.field }

// Operator returns the comparison operator.
func (p Predicate) Operator() Operator { return p.op }

// Value returns the comparison value.
func (p Predicate) Value() string { return p.value }

// IsFilename reports whether the predicate targets file names.
func (p Predicate) IsFilename() bool { return strings.HasPrefix(p.field, FilenamePrefix) }

// Pattern returns the field with the filename prefix stripped.
func (p Predicate) Pattern() string { return strings.TrimPrefix(p.field, FilenamePrefix) }

// String renders the predicate back into its parseable form.
func (p Predicate) String() string {
	return p.field + " " + string(p.op) + " " + p.value
}

// SatisfiedBy reports whether candidate satisfies the predicate.
// Ordering comparisons are lexicographic on the raw strings.
func (p Predicate) SatisfiedBy(candidate string) bool {
	switch p.op {
	case EQ:
		return candidate == p.value
	case NE:
		return candidate != p.value
	case LT:
		return candidate < p.value
	case GT:
		return candidate > p.value
	case LE:
		return candidate <= p.value
	case GE:
		return candidate >= p.value
	case Contains:
		return strings.Contains(candidate, p.value)
	default:
		return false
	}
}
