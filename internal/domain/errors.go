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

	// ErrStorageUnavailable means the local store could not be opened or written.
	// Callers surface it as "action not saved, try again".
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrAuthMissing means no usable credential is present.
	ErrAuthMissing = errors.New("auth missing")
	// ErrReplayFailed marks a queue entry whose network replay failed.
	ErrReplayFailed = errors.New("replay failed")
	// ErrDeserializationFailed marks a response body that could not be mirrored.
	ErrDeserializationFailed = errors.New("deserialization failed")
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

// ReplayError describes a failed replay of one queue entry.
// StatusCode is zero when no response was received.
type ReplayError struct {
	Queue      QueueName
	EntryID    string
	StatusCode int
	Permanent  bool
	Err        error
}

func (e *ReplayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("replay %s/%s: status %d: %v", e.Queue, e.EntryID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("replay %s/%s: %v", e.Queue, e.EntryID, e.Err)
}

func (e *ReplayError) Unwrap() []error { return []error{ErrReplayFailed, e.Err} }

// Responded reports whether the server answered at all.
func (e *ReplayError) Responded() bool { return e.StatusCode != 0 }
