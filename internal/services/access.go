package services

import (
	"context"

	"github.com/hongminglow/orgs-be/internal/models"
)

// AccessControl gates protected operations.
type AccessControl struct {
	authn *Authentication
}

// NewAccessControl constructs the rule set on top of authentication.
func NewAccessControl(authn *Authentication) *AccessControl {
	return &AccessControl{authn: authn}
}

// RequireAuthenticated resolves a bearer value to its user or fails with
// ErrAuthentication.
func (a *AccessControl) RequireAuthenticated(ctx context.Context, token string) (models.User, error) {
	return a.authn.Authenticate(ctx, token)
}

// RequireSelf fails with ErrAuthorization unless both ids are the same user.
func (a *AccessControl) RequireSelf(authenticatedUserID, requestedUserID string) error {
	return RequireSelf(authenticatedUserID, requestedUserID)
}

// RequireSelf is the self-access rule.
func RequireSelf(authenticatedUserID, requestedUserID string) error {
	if authenticatedUserID == "" || authenticatedUserID != requestedUserID {
		return ErrAuthorization
	}
	return nil
}
