//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orgs"),
		tcpostgres.WithUsername("orgs"),
		tcpostgres.WithPassword("orgs"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	// Migrations are idempotent.
	require.NoError(t, store.Migrate(ctx))
	return store
}

func newUser(email string) models.User {
	return models.User{FirstName: "Ola", LastName: "Raheem", Email: email, PasswordHash: "hash"}
}

func TestIntegration_Store(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u, err := store.Users().CreateUser(ctx, newUser(" Ola@Example.com "))
		require.NoError(t, err)
		assert.Equal(t, "ola@example.com", u.Email)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		_, err = store.Users().CreateUser(ctx, newUser("OLA@example.com"))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		_, err = store.Users().CreateUser(ctx, models.User{Email: "x@example.com"})
		require.ErrorIs(t, err, storage.ErrConstraint)

		got, err := store.Users().FindByEmail(ctx, "ola@EXAMPLE.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = store.Users().FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("memberships", func(t *testing.T) {
		u, err := store.Users().CreateUser(ctx, newUser("member@example.com"))
		require.NoError(t, err)
		other, err := store.Users().CreateUser(ctx, newUser("other@example.com"))
		require.NoError(t, err)

		description := "first"
		first, err := store.Organisations().CreateOrganisation(ctx, models.Organisation{Name: "First", Description: &description})
		require.NoError(t, err)
		second, err := store.Organisations().CreateOrganisation(ctx, models.Organisation{Name: "Second"})
		require.NoError(t, err)

		for _, id := range []string{first.ID, second.ID} {
			created, err := store.Memberships().Link(ctx, u.ID, id)
			require.NoError(t, err)
			assert.True(t, created)
		}
		created, err := store.Memberships().Link(ctx, u.ID, first.ID)
		require.NoError(t, err)
		assert.False(t, created)

		_, err = store.Memberships().Link(ctx, u.ID, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, storage.ErrConstraint)

		orgs, err := store.Memberships().OrganisationsOf(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, first.ID, orgs[0].ID)
		require.NotNil(t, orgs[0].Description)
		assert.Equal(t, "first", *orgs[0].Description)
		assert.Nil(t, orgs[1].Description)

		_, err = store.Memberships().OrganisationOf(ctx, other.ID, first.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)

		members, err := store.Memberships().MembersOf(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, u.ID, members[0].ID)
	})

	t.Run("transactions roll back", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.InTx(ctx, func(tx storage.Repos) error {
			u, err := tx.Users().CreateUser(ctx, newUser("tx@example.com"))
			if err != nil {
				return err
			}
			org, err := tx.Organisations().CreateOrganisation(ctx, models.Organisation{Name: "tx"})
			if err != nil {
				return err
			}
			if _, err := tx.Memberships().Link(ctx, u.ID, org.ID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = store.Users().FindByEmail(ctx, "tx@example.com")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		u, err := store.Users().CreateUser(ctx, newUser("token@example.com"))
		require.NoError(t, err)

		tok := models.AccessToken{
			ID:        "01J0000000000000000000TEST",
			UserID:    u.ID,
			Type:      models.AccessTokenType,
			Hash:      []byte{0xde, 0xad, 0xbe, 0xef},
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
		}
		require.NoError(t, store.Tokens().CreateToken(ctx, tok))
		require.ErrorIs(t, store.Tokens().CreateToken(ctx, tok), storage.ErrAlreadyExists)

		used := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, store.Tokens().TouchToken(ctx, tok.ID, used))

		got, err := store.Tokens().FindToken(ctx, tok.ID)
		require.NoError(t, err)
		assert.Equal(t, tok.Hash, got.Hash)
		require.NotNil(t, got.LastUsedAt)
		assert.True(t, used.Equal(*got.LastUsedAt))

		require.ErrorIs(t, store.Tokens().TouchToken(ctx, "missing", used), storage.ErrNotFound)
	})
}
