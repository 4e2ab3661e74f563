package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/services"
)

const bearerPrefix = "bearer "

// Authenticate rejects requests without a valid bearer token and places the
// resolved user in the request context for handlers.
func Authenticate(access *services.AccessControl) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, respond.StatusUnauthorized, respond.MsgAuthRequired)
				return
			}

			user, err := access.RequireAuthenticated(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrAuthentication) {
					zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
					respond.Error(w, r, http.StatusUnauthorized, respond.StatusUnauthorized, respond.MsgAuthRequired)
					return
				}
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("authenticate request")
				respond.Error(w, r, http.StatusInternalServerError, respond.StatusError, "Internal server error")
				return
			}

			logger := zerolog.Ctx(r.Context()).With().Str("user_id", user.ID).Logger()
			ctx := auth.ContextWithUser(logger.WithContext(r.Context()), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
