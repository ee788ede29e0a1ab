package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Helper to define distinct error types for type assertions if needed
type ConfigurationError struct{ DashboardError }
type TransportError struct{ DashboardError }
type DecodeError struct{ DashboardError }
type ValidationError struct{ DashboardError }

// -----------------------------------------------------------------------------

// RequestError is the normalized failure of a request/response call.
// StatusCode is 0 when the request never got an HTTP response.
type RequestError struct {
	DashboardError
	Operation  string
	StatusCode int
}

func NewRequestError(operation string, status int, cause error) *RequestError {
	msg := fmt.Sprintf("%s failed", operation)
	if status != 0 {
		msg = fmt.Sprintf("%s failed with status %d", operation, status)
	}
	return &RequestError{
		DashboardError: DashboardError{Message: msg, Cause: cause},
		Operation:      operation,
		StatusCode:     status,
	}
}

// -----------------------------------------------------------------------------

func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{DashboardError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsValidation reports whether err was produced by local validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// -----------------------------------------------------------------------------
// Backoff
// -----------------------------------------------------------------------------

// Backoff doubles its delay on every Next call, starting from Base.
// A zero Max means unbounded.
type Backoff struct {
	Base    time.Duration
	Max     time.Duration
	current time.Duration
}

func NewBackoff(base, maxDelay time.Duration) *Backoff {
	return &Backoff{Base: base, Max: maxDelay, current: base}
}

// -----------------------------------------------------------------------------

// Current returns the delay the next Next call will hand out.
func (b *Backoff) Current() time.Duration {
	return b.current
}

// -----------------------------------------------------------------------------

// Next returns the current delay and doubles it for the following call.
func (b *Backoff) Next() time.Duration {
	delay := b.current
	b.current *= 2
	if b.Max > 0 && b.current > b.Max {
		b.current = b.Max
	}
	return delay
}

// -----------------------------------------------------------------------------

func (b *Backoff) Reset() {
	b.current = b.Base
}
