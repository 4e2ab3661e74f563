package auth

import (
	"context"

	"github.com/hongminglow/orgs-be/internal/models"
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, &user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	v, ok := ctx.Value(userContextKey{}).(*models.User)
	if !ok || v == nil {
		return models.User{}, false
	}
	return *v, true
}
