package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure kinds callers branch on. Every other
// server rejection is surfaced as a *Error carrying the server's message.
var (
	// ErrNotFound maps 404 responses
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized maps 401/403 responses that survive the refresh cycle
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a server-reported failure: the HTTP status, the backend error
// code, a human-readable message meant for direct display, and an optional
// field-level error map for validation rejections.
type Error struct {
	// Status is the HTTP status code
	Status int

	// Code is the backend error code, e.g. "GATHERING_FULL"
	Code string

	// Message is the server-supplied human-readable message
	Message string

	// FieldErrors maps field names to validation messages
	FieldErrors map[string]string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// IsBusinessRejection reports whether the error is a business-rule
// rejection the user is expected to read, as opposed to a transport or
// session failure.
func IsBusinessRejection(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest ||
		apiErr.Status == http.StatusConflict ||
		apiErr.Status == http.StatusUnprocessableEntity
}
