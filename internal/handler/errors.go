package handler

import (
	"errors"
	"net/http"

	"idfbuilder/internal/domain"
	"idfbuilder/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	handleErrorWithExtras(w, err, nil)
}

// handleErrorWithExtras adds extra problem members, such as the unchanged
// document after a failed generation.
func handleErrorWithExtras(w http.ResponseWriter, err error, extras map[string]interface{}) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}
	httputil.RespondErrorWithExtras(w, status, detail, extras)
}

func statusFor(err error) int {
	var httpErr domain.HTTPError
	switch {
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}
