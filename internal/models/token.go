package models

import "time"

// AccessTokenType tags rows issued for API bearer authentication.
const AccessTokenType = "auth_token"

// AccessToken is the persisted form of an issued bearer token. Only the
// digest of the bearer value is stored.
type AccessToken struct {
	ID         string
	UserID     string
	Type       string
	Hash       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
