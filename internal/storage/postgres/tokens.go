package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

type tokenRepo struct {
	q querier
}

// CreateToken stores an issued token digest.
func (r tokenRepo) CreateToken(ctx context.Context, token models.AccessToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO auth_access_tokens (id, user_id, type, hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.Type, token.Hash, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create token: %w", mapPostgresError(err))
	}
	return nil
}

// FindToken fetches a token row by id.
func (r tokenRepo) FindToken(ctx context.Context, id string) (models.AccessToken, error) {
	var t models.AccessToken
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, type, hash, created_at, updated_at, last_used_at, expires_at
		FROM auth_access_tokens
		WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Hash, &t.CreatedAt, &t.UpdatedAt, &t.LastUsedAt, &t.ExpiresAt)
	if err != nil {
		return models.AccessToken{}, mapPostgresError(err)
	}
	return t, nil
}

// TouchToken records the last time a token authenticated a request.
func (r tokenRepo) TouchToken(ctx context.Context, id string, usedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE auth_access_tokens SET last_used_at = $2, updated_at = $2
		WHERE id = $1`, id, usedAt)
	if err != nil {
		return fmt.Errorf("touch token: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
