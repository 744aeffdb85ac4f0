package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes not owned by the publisher.
const (
	codeNotAuthenticated = "NOT_AUTHENTICATED"
	codeValidation       = "VALIDATION_ERROR"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeNotFound         = "NOT_FOUND"
	codeGenerateFailed   = "GENERATE_FAILED"
	codeInternal         = "INTERNAL_ERROR"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	ErrorCode string         `json:"errorCode"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, ErrorBody{ErrorCode: code, Message: message, Details: details})
}

// maxBodyBytes bounds JSON request bodies; a publish of several thousand URIs fits comfortably.
const maxBodyBytes = 1 << 20

func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
