package collection

import (
	"regexp"

	"github.com/zenithds/zenithds/internal/domain"
	"github.com/zenithds/zenithds/internal/domain/predicate"
)

// nameFilter decides whether a file name passes the filename predicates.
type nameFilter func(name string) bool

func acceptAll(string) bool { return true }

// filenameFilter compiles the predicates for the configured mode. A file whose
// name does not match a pattern passes that pattern's predicates.
func (r *Repo) filenameFilter(preds []predicate.Predicate) (nameFilter, error) {
	if len(preds) == 0 {
		return acceptAll, nil
	}

	if r.mode == ModePattern {
		re := r.pattern
		return func(name string) bool {
			text, ok := extract(re, name)
			if !ok {
				return true
			}
			for _, p := range preds {
				if !p.SatisfiedBy(text) {
					return false
				}
			}
			return true
		}, nil
	}

	compiled := make([]*regexp.Regexp, len(preds))
	for i, p := range preds {
		re, err := regexp.Compile(p.Pattern())
		if err != nil {
			return nil, domain.NewPredicateError(p.String(), "invalid filename pattern: "+err.Error())
		}
		compiled[i] = re
	}
	return func(name string) bool {
		for i, p := range preds {
			text, ok := extract(compiled[i], name)
			if ok && !p.SatisfiedBy(text) {
				return false
			}
		}
		return true
	}, nil
}

// extract returns the first capture group of the leftmost match, or the whole
// match when the pattern has no groups.
func extract(re *regexp.Regexp, name string) (string, bool) {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}
