package handler

import (
	"errors"
	"net/http"

	"lumina/internal/domain"
	"lumina/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses.
// Transport failures are checked first so wrapped ones still report retryable.
func handleError(w http.ResponseWriter, err error) {
	var transportErr *domain.TransportError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &transportErr):
		httputil.RespondErrorWithExtras(w, http.StatusServiceUnavailable, err.Error(), map[string]interface{}{
			"retryable": transportErr.Retryable(),
		})
	case errors.As(err, &httpErr):
		status := httpErr.StatusCode()
		detail := err.Error()
		if status >= http.StatusInternalServerError {
			detail = "internal server error"
		}
		httputil.RespondError(w, status, detail)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidMove), errors.Is(err, domain.ErrInvalidDocument):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBusy):
		httputil.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
