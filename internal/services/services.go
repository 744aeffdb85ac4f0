package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/rollplay/internal/shared"
)

// APIError is a non-2xx response from the Web API.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("spotify API error: %s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("spotify API error: %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an [*APIError].
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the Web API.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
