package respond

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/hongminglow/orgs-be/internal/validation"
)

// Status strings carried in response bodies.
const (
	StatusSuccess      = "success"
	StatusBadRequest   = "Bad request"
	StatusUnauthorized = "Unauthorized"
	StatusNotFound     = "Not Found"
	StatusError        = "error"
)

// Messages for rejected callers.
const (
	MsgAuthRequired     = "Authentication required. Please log in to access this resource"
	MsgPermissionDenied = "Permission denied. You cannot view the record of another user"
)

// Envelope is the success wrapper used across handlers.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Failure is the error wrapper used across handlers.
type Failure struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ValidationFailure lists every field that failed validation.
type ValidationFailure struct {
	Errors []validation.FieldError `json:"errors"`
}

// JSON writes a success response using the common envelope.
func JSON(w http.ResponseWriter, r *http.Request, code int, message string, data any) {
	write(w, r, code, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Error writes a failure response; status is the short label placed in the body.
func Error(w http.ResponseWriter, r *http.Request, code int, status, message string) {
	write(w, r, code, Failure{Status: status, Message: message, StatusCode: code})
}

// Validation writes a 422 with one entry per failing field.
func Validation(w http.ResponseWriter, r *http.Request, fields []validation.FieldError) {
	write(w, r, http.StatusUnprocessableEntity, ValidationFailure{Errors: fields})
}

// Raw writes v as JSON without an envelope.
func Raw(w http.ResponseWriter, r *http.Request, code int, v any) {
	write(w, r, code, v)
}

func write(w http.ResponseWriter, r *http.Request, code int, payload any) {
	render.Status(r, code)
	render.JSON(w, r, payload)
}
