package query

import (
	"github.com/zenithds/zenithds/internal/domain/predicate"
)

// Query is a parsed select request. It is never mutated after New returns,
// so a single instance is shared by every scan worker.
type Query struct {
	fields             []string
	predicates         []predicate.Predicate
	filenamePredicates []predicate.Predicate
}

// New builds a Query from a projection list and raw predicate strings.
// Predicates whose field starts with "__" are routed to the filename set.
func New(fields, rawPredicates []string) (*Query, error) {
	q := &Query{fields: append([]string(nil), fields...)}
	for _, raw := range rawPredicates {
		p, err := predicate.Parse(raw)
		if err != nil {
			return nil, err
		}
		if p.IsFilename() {
			q.filenamePredicates = append(q.filenamePredicates, p)
		} else {
			q.predicates = append(q.predicates, p)
		}
	}
	return q, nil
}

// Fields returns the projection list; empty means all columns.
func (q *Query) Fields() []string { return q.fields }

// Predicates returns the row-level predicates.
func (q *Query) Predicates() []predicate.Predicate { return q.predicates }

// FilenamePredicates returns the file-name predicates.
func (q *Query) FilenamePredicates() []predicate.Predicate { return q.filenamePredicates }

// HasProjection reports whether a projection list was given.
func (q *Query) HasProjection() bool { return len(q.fields) > 0 }

// Match reports whether a row, given as field→value, satisfies every row
// predicate. Predicates on fields missing from the row pass.
func (q *Query) Match(row map[string]string) bool {
	for _, p := range q.predicates {
		v, ok := row[p.Field()]
		if !ok {
			continue
		}
		if !p.SatisfiedBy(v) {
			return false
		}
	}
	return true
}
