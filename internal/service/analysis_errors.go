package service

import "fmt"

type ValidationErrorKind string

const (
	ValidationMalformedPayload ValidationErrorKind = "malformed_payload"
	ValidationMissingField     ValidationErrorKind = "missing_field"
	ValidationInvalidEnum      ValidationErrorKind = "invalid_enum"
	ValidationOutOfRange       ValidationErrorKind = "out_of_range"
)

// ValidationError is a payload-shape failure from the response validator.
// Semantic kinds (missing field, invalid enum, out of range) signal a
// persistent prompt/model mismatch and are never retried.
type ValidationError struct {
	Kind  ValidationErrorKind
	Field string
	Value string
	Cause error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationMalformedPayload:
		return fmt.Sprintf("malformed analysis payload: %v", e.Cause)
	case ValidationMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case ValidationInvalidEnum:
		return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
	case ValidationOutOfRange:
		return fmt.Sprintf("value %s out of range for field %q", e.Value, e.Field)
	default:
		return "invalid analysis payload"
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another generation attempt could plausibly fix
// the failure. Only unparseable text qualifies; a well-formed payload with
// wrong content would fail the same way again.
func (e *ValidationError) Retryable() bool {
	return e.Kind == ValidationMalformedPayload
}

func newMalformedPayloadError(cause error) *ValidationError {
	return &ValidationError{Kind: ValidationMalformedPayload, Cause: cause}
}

func newMissingFieldError(field string) *ValidationError {
	return &ValidationError{Kind: ValidationMissingField, Field: field}
}

func newInvalidEnumError(field, value string) *ValidationError {
	return &ValidationError{Kind: ValidationInvalidEnum, Field: field, Value: value}
}

func newOutOfRangeError(field string, value int) *ValidationError {
	return &ValidationError{Kind: ValidationOutOfRange, Field: field, Value: fmt.Sprintf("%d", value)}
}

type GenerationErrorKind string

const (
	// GenerationExhausted means the retry budget was consumed on transient
	// faults (network, timeout, upstream 5xx, unparseable text).
	GenerationExhausted GenerationErrorKind = "exhausted"
	// GenerationInvalidResponse wraps a non-retried semantic ValidationError.
	GenerationInvalidResponse GenerationErrorKind = "invalid_response"
)

type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case GenerationInvalidResponse:
		return fmt.Sprintf("model returned an invalid analysis: %v", e.Err)
	default:
		return fmt.Sprintf("analysis generation exhausted retries: %v", e.Err)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
