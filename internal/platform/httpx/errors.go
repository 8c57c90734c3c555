package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrInUse):
		Problem(w, http.StatusConflict, "In Use", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrConcurrentUpdate):
		Problem(w, http.StatusConflict, "Concurrent Update", "another request changed the same records, resubmit")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Already Processed", err.Error())
	case errors.Is(err, shared.ErrInsufficientStock):
		Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// IsClientError reports whether err maps to a 4xx response.
func IsClientError(err error) bool {
	for _, target := range []error{
		shared.ErrNotFound, shared.ErrDuplicate, shared.ErrInUse, shared.ErrInvalidState,
		shared.ErrIdempotencyConflict, shared.ErrInsufficientStock, shared.ErrValidation,
		shared.ErrConcurrentUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Fail logs unexpected errors and writes the mapped problem response.
func Fail(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	if logger != nil && !IsClientError(err) {
		logger.Error(msg, slog.Any("error", err))
	}
	RespondError(w, err)
}
