package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

const userColumns = `user_id, first_name, last_name, email, phone, password_hash, created_at, updated_at`

type userRepo struct {
	q querier
}

// CreateUser inserts a new user row, generating its id.
func (r userRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.Email = storage.NormalizeEmail(user.Email)
	if err := storage.CheckUser(user); err != nil {
		return models.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (user_id, first_name, last_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := r.q.QueryRow(ctx, query, user.ID, user.FirstName, user.LastName, user.Email, user.Phone, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Debug().Str("user_id", created.ID).Msg("created user")
	return created, nil
}

// FindByID fetches a user by id.
func (r userRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	return scanUser(row)
}

// FindByEmail fetches a user by email address.
func (r userRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, storage.NormalizeEmail(email))
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, mapPostgresError(err)
	}
	return user, nil
}
