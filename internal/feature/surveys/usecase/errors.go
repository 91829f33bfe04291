// Package usecase implements the business logic for the surveys feature.
package usecase

import (
	"errors"
	"strings"
)

var (
	// ErrEntryNotFound is returned when no survey entry exists with the given ID.
	ErrEntryNotFound = errors.New("survey entry not found")

	// ErrForbidden is returned when the caller is authenticated but may not perform the operation.
	ErrForbidden = errors.New("access denied")

	// ErrReferentialIntegrity is returned when a write violates a foreign-key or uniqueness constraint.
	ErrReferentialIntegrity = errors.New("referenced record does not exist or already exists")
)

// FieldViolation describes one failed rule on one payload field.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError carries every violation found in a payload.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
