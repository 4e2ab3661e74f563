package storage

import (
	"fmt"
	"strings"

	"github.com/hongminglow/orgs-be/internal/models"
)

// NormalizeEmail trims and lower-cases an address so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckUser enforces the columns every user row must carry.
func CheckUser(user models.User) error {
	switch {
	case strings.TrimSpace(user.Email) == "":
		return fmt.Errorf("%w: email is required", ErrConstraint)
	case strings.TrimSpace(user.FirstName) == "":
		return fmt.Errorf("%w: first name is required", ErrConstraint)
	case strings.TrimSpace(user.LastName) == "":
		return fmt.Errorf("%w: last name is required", ErrConstraint)
	case user.PasswordHash == "":
		return fmt.Errorf("%w: password hash is required", ErrConstraint)
	}
	return nil
}

// CheckOrganisation enforces the columns every organisation row must carry.
func CheckOrganisation(org models.Organisation) error {
	if strings.TrimSpace(org.Name) == "" {
		return fmt.Errorf("%w: organisation name is required", ErrConstraint)
	}
	return nil
}
