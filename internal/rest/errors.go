package rest

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Adapter errors.
var (
	ErrUnknownOperation = errors.New("rest: unknown operation")
	ErrNoSession        = errors.New("rest: missing session header")
	ErrUnknownSession   = errors.New("rest: unknown session")
)

// ErrorResponse is the body of every non-200 reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps adapter errors to HTTP status and error code. Errors not
// listed are request decoding failures.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnknownOperation):
		return http.StatusNotFound, "unknown_operation"
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrUnknownSession):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusBadRequest, "invalid_request"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Code:    status,
		Message: message,
	})
}
