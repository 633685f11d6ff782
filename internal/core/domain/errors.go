package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable marks a persistence failure. It is logged, never
	// surfaced to the sensor.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRateLimited is returned when a source exceeds its admission window.
	ErrRateLimited = errors.New("too many requests")

	// ErrInvalidPayload is the parent of every ValidationError.
	ErrInvalidPayload = errors.New("invalid data format")
)

// ValidationKind classifies why a payload was rejected.
type ValidationKind string

const (
	MissingField     ValidationKind = "missing_field"
	EmptyPayload     ValidationKind = "empty_payload"
	MalformedPayload ValidationKind = "malformed_payload"
)

// ValidationError is a client-side fault reported back verbatim with a 400.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets callers match any validation failure against ErrInvalidPayload.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPayload
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Kind:    MissingField,
		Field:   field,
		Message: "Required fields: device_id, timestamp",
	}
}

func emptyPayload() *ValidationError {
	return &ValidationError{
		Kind:    EmptyPayload,
		Message: "No SSID data found in payload",
	}
}

func malformed(reason string) *ValidationError {
	return &ValidationError{
		Kind:    MalformedPayload,
		Message: reason,
	}
}
