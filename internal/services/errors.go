package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/orgs-be/internal/validation"
)

var (
	// ErrAuthentication means the caller could not be identified: bad
	// credentials, or a missing, malformed or expired token.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization means the caller is known but may not see the resource.
	ErrAuthorization = errors.New("permission denied")
	// ErrNotFound means the requested resource does not exist for the caller.
	ErrNotFound = errors.New("not found")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// RegistrationError wraps any failure that aborted a registration after
// validation passed.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

func invalid(fields ...validation.FieldError) error {
	return &ValidationError{Fields: fields}
}
