package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFileSystem signals an I/O failure: missing directory or file, permissions.
	ErrFileSystem = errors.New("file system error")
	// ErrRegex signals a malformed filename pattern in the engine configuration.
	ErrRegex = errors.New("regex error")
	// ErrCSV signals malformed CSV content.
	ErrCSV = errors.New("csv error")
	// ErrPredicate signals a malformed predicate string or operator.
	ErrPredicate = errors.New("invalid predicate")
	// ErrQuery signals a semantically invalid request.
	ErrQuery = errors.New("invalid query")
)

// PredicateError wraps ErrPredicate with the offending predicate text.
type PredicateError struct {
	Predicate string
	Reason    string
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrPredicate.Error(), e.Predicate, e.Reason)
}

func (e *PredicateError) Unwrap() error { return ErrPredicate }

// NewPredicateError creates a predicate error for the given raw predicate.
func NewPredicateError(predicate, reason string) error {
	return &PredicateError{Predicate: predicate, Reason: reason}
}

// FileSystemError wraps an I/O error with ErrFileSystem, keeping the cause matchable.
func FileSystemError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrFileSystem, err)
}

// CSVError wraps a CSV decoding or encoding error with ErrCSV.
func CSVError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCSV, err)
}
