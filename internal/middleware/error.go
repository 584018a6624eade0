package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorKind is the machine-readable code carried in every error body
type ErrorKind string

const (
	KindValidation       ErrorKind = "VALIDATION_ERROR"
	KindBadRequest       ErrorKind = "BAD_REQUEST"
	KindUnauthorized     ErrorKind = "UNAUTHORIZED"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindMethodNotAllowed ErrorKind = "METHOD_NOT_ALLOWED"
	KindConflict         ErrorKind = "CONFLICT"
	KindTooManyRequests  ErrorKind = "TOO_MANY_REQUESTS"
	KindUnavailable      ErrorKind = "SERVICE_UNAVAILABLE"
	KindInternal         ErrorKind = "INTERNAL_ERROR"
)

// KindForStatus maps an HTTP status to its error kind. Unlisted 4xx statuses
// are bad requests and unlisted 5xx statuses internal errors.
func KindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return KindMethodNotAllowed
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	case http.StatusServiceUnavailable:
		return KindUnavailable
	}
	if statusCode < http.StatusInternalServerError {
		return KindBadRequest
	}
	return KindInternal
}

// ErrorResponse is the envelope of every error body
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      ErrorKind              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, statusCode, KindForStatus(statusCode), message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	writeError(w, statusCode, KindForStatus(statusCode), message, details)
}

// RespondWithValidationErrors answers 400 with the failing fields under
// details.validation_errors
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	writeError(w, http.StatusBadRequest, KindValidation, "validation failed", map[string]interface{}{
		"validation_errors": errors,
	})
}

func writeError(w http.ResponseWriter, statusCode int, kind ErrorKind, message string, details map[string]interface{}) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      kind,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ErrorHandlingMiddleware turns panics into 500 responses. Aborted handlers
// keep propagating so the server drops the connection.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithMessage sends {"message": message}
func RespondWithMessage(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, map[string]string{"message": message})
}
