package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

// ErrInvalidToken covers every reason a presented bearer token is rejected.
var ErrInvalidToken = errors.New("invalid access token")

// IssuedToken is the one-time view of a freshly minted token. Value is never
// stored; only its digest is.
type IssuedToken struct {
	ID        string
	Value     string
	ExpiresAt time.Time
}

// TokenManager issues signed bearer tokens and checks them against the
// token table.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	tokens storage.TokenStore
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, lifetime and token store.
func NewTokenManager(secret, issuer string, ttl time.Duration, tokens storage.TokenStore) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		tokens: tokens,
		now:    time.Now,
	}
}

// Issue signs a token for user and persists its digest.
func (t *TokenManager) Issue(ctx context.Context, user models.User) (IssuedToken, error) {
	now := t.now()
	id := ulid.Make().String()
	expiresAt := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   user.ID,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	if err := t.tokens.CreateToken(ctx, models.AccessToken{
		ID:        id,
		UserID:    user.ID,
		Type:      models.AccessTokenType,
		Hash:      digest(signed),
		ExpiresAt: expiresAt,
	}); err != nil {
		return IssuedToken{}, fmt.Errorf("store token: %w", err)
	}

	return IssuedToken{ID: id, Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify resolves a presented bearer value to its stored token row.
func (t *TokenManager) Verify(ctx context.Context, raw string) (models.AccessToken, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	row, err := t.tokens.FindToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.AccessToken{}, fmt.Errorf("%w: unknown token id", ErrInvalidToken)
		}
		return models.AccessToken{}, err
	}

	now := t.now()
	switch {
	case subtle.ConstantTimeCompare(row.Hash, digest(raw)) != 1:
		return models.AccessToken{}, fmt.Errorf("%w: digest mismatch", ErrInvalidToken)
	case row.Type != models.AccessTokenType:
		return models.AccessToken{}, fmt.Errorf("%w: unexpected type %q", ErrInvalidToken, row.Type)
	case row.UserID != claims.Subject:
		return models.AccessToken{}, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	case row.Expired(now):
		return models.AccessToken{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	if err := t.tokens.TouchToken(ctx, row.ID, now); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("token_id", row.ID).Msg("record token use")
	} else {
		row.LastUsedAt = &now
	}
	return row, nil
}

func digest(value string) []byte {
	sum := sha256.Sum256([]byte(value))
	return sum[:]
}
