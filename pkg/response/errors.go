package response

import (
	"encoding/json"
	"net/http"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	WriteErrorWithDetails(w, statusCode, message, code, "")
}

// WriteErrorWithDetails writes a structured JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, message, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// Common error codes
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeUnauthorizedMutation = "UNAUTHORIZED_MUTATION"
	CodeNotFound             = "NOT_FOUND"
	CodeRateLimit            = "RATE_LIMIT_EXCEEDED"
	CodePersistence          = "PERSISTENCE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeUnauthorizedMutation)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func PersistenceError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodePersistence)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
