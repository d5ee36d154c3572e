// Package rest provides the authenticated HTTP client shared by the
// provider packages: request construction, bearer injection, error
// classification, and streaming downloads. It performs no automatic
// retry — retry and backoff policy belongs to the caller.
package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, rest.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("rest: bad request")
	ErrUnauthorized = errors.New("rest: unauthorized")
	ErrForbidden    = errors.New("rest: forbidden")
	ErrNotFound     = errors.New("rest: not found")
	ErrConflict     = errors.New("rest: conflict")
	ErrThrottled    = errors.New("rest: throttled")
	ErrServerError  = errors.New("rest: server error")
)

// APIError wraps a sentinel error with the provider name, HTTP status,
// request correlation ID, and the raw API error body. Enough context to
// log actionable diagnostics without inspecting internals.
type APIError struct {
	Provider   string
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: HTTP %d (request-id: %s): %s", e.Provider, e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
