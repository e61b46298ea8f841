package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse marks a payload that failed structural validation.
	ErrMalformedResponse = errors.New("malformed response")
)
