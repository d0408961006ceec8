// Package apperr defines the domain error taxonomy shared by services,
// repositories, and the HTTP boundary. Handlers translate these into status
// codes and `{detail: ...}` bodies; anything outside the taxonomy is a
// server fault.
package apperr

import (
	"strings"
)

// FieldError is a single (field, message) pair inside a ValidationError.
// Order is preserved so responses list problems in the order they were found.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or out-of-policy input, itemized per field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// Validation builds a single-field ValidationError.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ConflictError reports a uniqueness violation. Field is set when the
// conflict is attributable to one input field (registration), in which case
// the boundary renders it as an itemized 400 instead of a bare 409.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a resource-level conflict (rendered 409).
func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// FieldConflict builds a field-scoped conflict (rendered 400, itemized).
func FieldConflict(field, message string) *ConflictError {
	return &ConflictError{Field: field, Message: message}
}

// AuthError reports missing, malformed, or expired credentials (401).
// Unknown-user and wrong-password share one message to prevent enumeration.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func Auth(message string) *AuthError { return &AuthError{Message: message} }

// ForbiddenError reports an authenticated actor acting outside their
// ownership (403).
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(message string) *ForbiddenError { return &ForbiddenError{Message: message} }

// NotFoundError reports an absent resource (404).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) *NotFoundError { return &NotFoundError{Resource: resource} }
