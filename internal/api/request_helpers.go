package api

import (
	"net/http"

	"github.com/taskhub/taskhub-api/internal/api/shared"
)

// Thin wrappers over the shared helpers so handlers in this package stay
// terse.

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	return shared.DecodeJSON(r, v)
}

// ValidateRequest validates the given request struct.
func ValidateRequest(v interface{}) error {
	return shared.ValidateRequest(v)
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	shared.RespondWithJSON(w, r, status, data)
}

// RespondWithError writes a JSON error response with the given status code and message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	shared.RespondWithError(w, r, status, message)
}

// RespondWithErrorAndLog writes a JSON error response and logs the detailed error.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...shared.ResponseOption,
) {
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err, opts...)
}
