package shared

import "errors"

var (
	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Authentication errors
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInsufficientScope = errors.New("insufficient scope")
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrNoRefreshToken    = errors.New("no refresh token available")
	ErrUnauthorizedUser  = errors.New("user is not allowed to sign in")
	ErrSessionNotFound   = errors.New("session not found")
	ErrStateMismatch     = errors.New("oauth state mismatch")

	// API and service errors
	ErrAPIRequest         = errors.New("API request failed")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Image errors
	ErrImageTooLarge = errors.New("image could not be reduced below size limit")
	ErrInvalidImage  = errors.New("invalid image")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)
