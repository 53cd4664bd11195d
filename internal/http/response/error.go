package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{
				{Field: field, Issue: issue},
			},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client only gets a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrTextRequired):
		ValidationError(w, "text", "required field missing")
	case errors.Is(err, domain.ErrTextTooLong):
		ValidationError(w, "text", "must be 500 characters or less")
	case errors.Is(err, domain.ErrDeadlineRequired):
		ValidationError(w, "deadline", "required field missing")
	case errors.Is(err, domain.ErrDeadlineInPast):
		ValidationError(w, "deadline", "cannot be in the past")
	case errors.Is(err, domain.ErrInvalidPriority):
		ValidationError(w, "priority", "must be IMPORTANT or URGENT")
	case errors.Is(err, domain.ErrInvalidRepetition):
		ValidationError(w, "repetition", "invalid repetition rule")
	case errors.Is(err, domain.ErrInvalidWeekday):
		ValidationError(w, "repetition.days", "weekday index must be between 0 and 6")
	case errors.Is(err, domain.ErrInvalidFilter):
		ValidationError(w, "filter", err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")
	case errors.Is(err, domain.ErrNotAnOccurrence):
		ValidationError(w, "date", "not an occurrence of the task")
	case errors.Is(err, calendar.ErrInvalidDate):
		ValidationError(w, "date", "must be a valid YYYY-MM-DD date")
	case errors.Is(err, domain.ErrInvalidRange):
		BadRequest(w, err.Error())

	// Not found errors (404)
	case errors.Is(err, domain.ErrTaskNotFound):
		NotFound(w, "task")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Conflict errors (409)
	case errors.Is(err, domain.ErrTaskExists):
		Conflict(w, err.Error())

	// Unknown errors (500) - Log server-side, return generic message to client
	default:
		InternalError(w, r, err)
	}
}
