package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrRemoteCallFailed covers transport, auth and timeout failures of the
	// text-generation endpoint.
	ErrRemoteCallFailed = errors.New("remote call failed")
	// ErrMalformedResponse is returned when a language normalization payload
	// is not valid JSON or lacks a required field.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidLemma is returned when the model answered a lemma request
	// with multi-line or explanatory text.
	ErrInvalidLemma = errors.New("invalid lemma")
	// ErrSchemaViolation is returned when a generated entry does not match
	// the dictionary entry schema.
	ErrSchemaViolation = errors.New("schema violation")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// RemoteError wraps a failed call to the text-generation endpoint.
type RemoteError struct {
	Provider string
	Err      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemoteCallFailed, e.Provider, e.Err)
}

// Is reports ErrRemoteCallFailed so callers can match on the sentinel while
// still unwrapping to the provider error (e.g. context.DeadlineExceeded).
func (e *RemoteError) Is(target error) bool { return target == ErrRemoteCallFailed }

func (e *RemoteError) Unwrap() error { return e.Err }

// ResponseError describes a model response that could not be accepted.
// Kind is one of ErrMalformedResponse, ErrInvalidLemma or ErrSchemaViolation.
// Raw holds the unmodified response text for display to the user.
type ResponseError struct {
	Kind   error
	Reason string
	Raw    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ResponseError) Unwrap() error { return e.Kind }

// NewResponseError builds a ResponseError of the given kind.
func NewResponseError(kind error, raw, format string, args ...any) *ResponseError {
	return &ResponseError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Raw:    raw,
	}
}
