package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// StatusClientClosedRequest is the nginx convention for a canceled
// request; net/http has no named constant for it.
const StatusClientClosedRequest = 499

// Map converts service/repo/infra errors into an HTTP status and a
// user-facing message. Keeps handlers clean by centralizing the mapping.
func Map(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, ErrDuplicateLike):
		return http.StatusConflict, ErrDuplicateLike.Error()

	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests, ErrQuotaExceeded.Error()

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, ErrNotFound.Error()

	case errors.Is(err, ErrGeocodeUnresolved):
		return http.StatusUnprocessableEntity, ErrGeocodeUnresolved.Error()

	case errors.Is(err, ErrInvalidLocation):
		return http.StatusBadRequest, ErrInvalidLocation.Error()

	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict, ErrEmailTaken.Error()

	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrInvalidCredentials.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "request was canceled"

	default:
		// internal detail stays in logs, not in the response body
		return http.StatusInternalServerError, "internal error"
	}
}
