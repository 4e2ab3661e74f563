// Package validation turns struct tag validation into per-field error lists.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule names reported to clients.
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RuleUnique   = "database.unique"
	RuleExists   = "database.exists"
)

// FieldError describes one failing field.
type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Rule    string `json:"rule"`
}

// NewFieldError builds a FieldError with the standard message for rule.
func NewFieldError(field, rule string) FieldError {
	return FieldError{Message: Message(field, rule), Field: field, Rule: rule}
}

// Message renders the client-facing text for a failed rule.
func Message(field, rule string) string {
	switch rule {
	case RuleRequired:
		return fmt.Sprintf("The %s field must be defined", field)
	case RuleEmail:
		return fmt.Sprintf("The %s field must be a valid email address", field)
	case RuleUnique:
		return fmt.Sprintf("The %s has already been taken", field)
	case RuleExists:
		return fmt.Sprintf("The selected %s is invalid", field)
	default:
		return fmt.Sprintf("The %s field is invalid", field)
	}
}

// Validator wraps a validator.Validate that reports JSON field names.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates every field of s and returns all failures, one per field.
func (v *Validator) Struct(s any) []FieldError {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error(), Rule: "invalid"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, NewFieldError(fe.Field(), fe.Tag()))
	}
	return out
}

// Has reports whether field already failed.
func Has(fields []FieldError, field string) bool {
	return slices.ContainsFunc(fields, func(f FieldError) bool { return f.Field == field })
}

// SortByOrder orders fields by their position in order; unknown fields go last.
func SortByOrder(fields []FieldError, order ...string) {
	rank := func(name string) int {
		if i := slices.Index(order, name); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(fields, func(a, b FieldError) int {
		return rank(a.Field) - rank(b.Field)
	})
}
