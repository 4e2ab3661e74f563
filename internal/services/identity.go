package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

// CredentialFinder looks identities up by their login uid and checks a
// password against them.
type CredentialFinder interface {
	FindByUID(ctx context.Context, uid string) (models.User, error)
	VerifyPassword(user models.User, password string) error
}

var _ CredentialFinder = (*Identity)(nil)

// Identity is the credential-aware view over the user store.
type Identity struct {
	users  storage.UserStore
	hasher *auth.PasswordHasher
}

// NewIdentity constructs the identity service.
func NewIdentity(users storage.UserStore, hasher *auth.PasswordHasher) *Identity {
	return &Identity{users: users, hasher: hasher}
}

// FindByUID resolves a user by email, the only login uid.
func (i *Identity) FindByUID(ctx context.Context, uid string) (models.User, error) {
	return i.users.FindByEmail(ctx, storage.NormalizeEmail(uid))
}

// VerifyPassword checks password against the user's stored hash.
func (i *Identity) VerifyPassword(user models.User, password string) error {
	return i.hasher.Verify(user.PasswordHash, password)
}

// VerifyCredentials returns the user only when the email exists and the
// password matches. Both failure paths return ErrAuthentication and spend a
// bcrypt comparison.
func (i *Identity) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := i.FindByUID(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			i.hasher.Burn(password)
			return models.User{}, ErrAuthentication
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if err := i.VerifyPassword(user, password); err != nil {
		return models.User{}, ErrAuthentication
	}
	return user, nil
}

// GetUser returns the caller's own record. Any other id is refused.
func (i *Identity) GetUser(ctx context.Context, callerID, userID string) (models.User, error) {
	if err := RequireSelf(callerID, userID); err != nil {
		return models.User{}, err
	}
	user, err := i.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
