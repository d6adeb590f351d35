package weather

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUpstreamUnavailable covers network failures, timeouts, non-2xx
	// responses and missing API keys. Callers substitute mock data for it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrBatchBackend is returned when the remote backend could not serve a
	// whole batch; the facade falls back to direct adapter calls.
	ErrBatchBackend = errors.New("backend batch failed")
)

// ValidationError rejects bad input before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// RateLimitedError reports an upstream or backend 429. RetryAfter is zero
// when the server sent no hint.
type RateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return e.Provider + ": rate limited"
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsRateLimited extracts a RateLimitedError from err.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
