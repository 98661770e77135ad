// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/procuredesk/procuredesk/internal/shared"
)

// RespondError maps application errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrFormat):
		Problem(w, http.StatusUnprocessableEntity, "Malformed Data", err.Error())
	case errors.Is(err, shared.ErrStorage):
		Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
