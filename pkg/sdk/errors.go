package zenithds

import "github.com/zenithds/zenithds/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrFileSystem = domain.ErrFileSystem
	ErrRegex      = domain.ErrRegex
	ErrCSV        = domain.ErrCSV
	ErrPredicate  = domain.ErrPredicate
	ErrQuery      = domain.ErrQuery
)

// PredicateError reports a malformed predicate. Use errors.As() to inspect it.
type PredicateError = domain.PredicateError
