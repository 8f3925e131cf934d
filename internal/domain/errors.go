package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing means no user id or access token was supplied.
	// Callers prompt for input rather than treating it as a failure.
	ErrInputMissing = errors.New("input missing")

	// ErrNoData means the upstream response parsed but held no readings.
	ErrNoData = errors.New("no recharge data available")

	// ErrMalformedResponse means the upstream body is not the expected shape.
	ErrMalformedResponse = errors.New("malformed recharge response")

	// ErrInsufficientData means a delta was requested over fewer than two readings.
	ErrInsufficientData = errors.New("insufficient data: need at least two readings")
)

// APIError reports a non-200 response from the recharge endpoint.
// It carries only the status code so response bodies and credentials never
// reach logs or users.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recharge API error: status %d", e.StatusCode)
}
