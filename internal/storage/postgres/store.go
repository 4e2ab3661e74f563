package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, letting
// the same repositories run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres-backed persistence for users, organisations,
// memberships and access tokens.
type Store struct {
	pool *pgxpool.Pool
	repos
}

// Open connects to the database without touching the schema.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool, repos: repos{q: pool}}, nil
}

// NewStore opens the database and applies migrations.
func NewStore(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	s, err := Open(ctx, databaseURL, maxConns)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InTx runs fn inside a single transaction. Any error returned by fn rolls
// the whole transaction back.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Repos) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(repos{q: tx})
	})
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL CHECK (btrim(first_name) <> ''),
			last_name TEXT NOT NULL CHECK (btrim(last_name) <> ''),
			email TEXT NOT NULL CHECK (btrim(email) <> ''),
			phone TEXT,
			password_hash TEXT NOT NULL CHECK (password_hash <> ''),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (email);`,
		`CREATE TABLE IF NOT EXISTS organisations (
			org_id TEXT PRIMARY KEY,
			name TEXT NOT NULL CHECK (btrim(name) <> ''),
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS org_user (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (user_id),
			org_id TEXT NOT NULL REFERENCES organisations (org_id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT org_user_user_id_org_id_unique UNIQUE (user_id, org_id)
		);`,
		`CREATE INDEX IF NOT EXISTS org_user_org_id_idx ON org_user (org_id);`,
		`CREATE TABLE IF NOT EXISTS auth_access_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			hash BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_used_at TIMESTAMPTZ,
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS auth_access_tokens_user_id_idx ON auth_access_tokens (user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	log.Debug().Int("statements", len(stmts)).Msg("schema migrated")
	return nil
}

// repos binds every repository to one querier.
type repos struct {
	q querier
}

func (r repos) Users() storage.UserStore                 { return userRepo{q: r.q} }
func (r repos) Organisations() storage.OrganisationStore { return organisationRepo{q: r.q} }
func (r repos) Memberships() storage.MembershipStore     { return membershipRepo{q: r.q} }
func (r repos) Tokens() storage.TokenStore               { return tokenRepo{q: r.q} }
