package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("already in progress")

	// ErrUpstreamUnavailable means a collaborator cannot be called at all
	// (missing credentials). No request is attempted.
	ErrUpstreamUnavailable = errors.New("generation service not configured")

	// ErrUpstream covers network and HTTP failures from a collaborator.
	ErrUpstream = errors.New("generation service failed")

	// ErrMalformedResponse means a collaborator answered but the text could
	// not be turned into the expected structure.
	ErrMalformedResponse = errors.New("malformed generation response")

	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports an operation already running for the same resource
type ConflictError struct {
	Message  string
	Resource string // field name or "document"
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
