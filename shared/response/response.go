package response

import (
	"encoding/json"
	"net/http"

	"github.com/vasapolrittideah/shop-it-api/shared/apperror"
)

// Envelope is the uniform result body returned by every successful operation.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// ErrorBody is returned for failed operations.
type ErrorBody struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Code       string            `json:"code,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

const internalErrorMessage = "internal server error"

// Success builds an envelope. A zero status defaults to 200.
func Success(message string, data any, status int) Envelope {
	if status == 0 {
		status = http.StatusOK
	}
	return Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		StatusCode: status,
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write writes a success envelope using its own status code.
func Write(w http.ResponseWriter, env Envelope) {
	WriteJSON(w, env.StatusCode, env)
}

// WriteError writes err as an error body. Operational errors keep their status,
// code and message; anything else is reported as a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Status:     "error",
			StatusCode: http.StatusInternalServerError,
			Message:    internalErrorMessage,
		})
		return
	}

	WriteJSON(w, appErr.StatusCode(), ErrorBody{
		Status:     "error",
		StatusCode: appErr.StatusCode(),
		Message:    appErr.Message,
		Code:       appErr.Code(),
		Details:    appErr.Details,
	})
}
