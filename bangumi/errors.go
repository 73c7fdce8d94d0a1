package bangumi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid bangumi configuration")
	// ErrNotFound indicates a 404 or an empty search during resolution
	ErrNotFound = errors.New("bangumi: not found")
	// ErrRateLimited indicates the API answered 429
	ErrRateLimited = errors.New("bangumi: rate limited")
	// ErrValidation indicates malformed local input, rejected before dispatch
	ErrValidation = errors.New("bangumi: invalid input")
)

// APIError represents any other non-200 answer, or a transport failure
// when StatusCode is 0.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.IsNetwork() {
		return fmt.Sprintf("bangumi API error: network: %v", e.Err)
	}
	return fmt.Sprintf("bangumi API error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the request never got an HTTP answer
func (e *APIError) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsServerError reports a 5xx answer
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
