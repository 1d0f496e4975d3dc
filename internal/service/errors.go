// Package service provides business logic services for Lancaster Identity.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors.
var (
	// ErrInternalError indicates an unexpected infrastructure failure.
	ErrInternalError = errors.New("internal server error")
)

// FieldError describes a single violated validation rule.
type FieldError struct {
	// Field is the input field that failed validation.
	Field string `json:"field"`

	// Message is the human-readable description of the violation.
	Message string `json:"message"`
}

// ValidationError aggregates all field-level violations for one request.
// Violations are collected eagerly, not fail-fast, so the caller sees
// every problem at once.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ConflictError indicates a uniqueness violation on a user field.
type ConflictError struct {
	// Field is the conflicting field: "username" or "e-mail".
	Field string

	// Value is the conflicting value.
	Value string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("User with %s: %s, already exists", e.Field, e.Value)
}

// IsValidationError reports whether err is a ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsConflictError reports whether err is a ConflictError and returns it.
func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
