package service

import (
	"errors"
	"fmt"
)

// maxUpstreamErrorRunes caps how much of an upstream error body is echoed back.
const maxUpstreamErrorRunes = 500

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrMisconfigured is returned when the server lacks the credential for the upstream.
	ErrMisconfigured = errors.New("server misconfiguration")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// UpstreamError carries a non-2xx reply from the completion API.
// Body holds at most the first 500 characters of what the upstream sent.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// NewUpstreamError builds an UpstreamError, truncating body.
func NewUpstreamError(status int, body []byte) *UpstreamError {
	return &UpstreamError{StatusCode: status, Body: truncateRunes(string(body), maxUpstreamErrorRunes)}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match upstream failures with errors.Is(err, ErrExternalService).
func (e *UpstreamError) Unwrap() error {
	return ErrExternalService
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
