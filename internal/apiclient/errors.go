package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the branch API.
type Error struct {
	StatusCode int
	// Message is the server's "message" field, empty when none was sent.
	Message string
	Method  string
	Path    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the server-provided message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func IsNotFound(err error) bool       { return StatusOf(err) == http.StatusNotFound }
func IsConflict(err error) bool       { return StatusOf(err) == http.StatusConflict }
func IsNotImplemented(err error) bool { return StatusOf(err) == http.StatusNotImplemented }
func IsUnauthorized(err error) bool   { return StatusOf(err) == http.StatusUnauthorized }
func IsForbidden(err error) bool      { return StatusOf(err) == http.StatusForbidden }
