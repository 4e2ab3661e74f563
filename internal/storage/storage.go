package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/orgs-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConstraint indicates a required column was missing or a reference
// pointed at a row that does not exist.
var ErrConstraint = errors.New("constraint violation")

// UserStore captures persistence operations for user records.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// OrganisationStore captures persistence operations for organisations.
type OrganisationStore interface {
	CreateOrganisation(ctx context.Context, org models.Organisation) (models.Organisation, error)
	FindOrganisation(ctx context.Context, id string) (models.Organisation, error)
}

// MembershipStore manages the user/organisation join.
type MembershipStore interface {
	// Link inserts the pair unless it already exists. The returned bool is
	// true only when a new row was written.
	Link(ctx context.Context, userID, orgID string) (bool, error)
	OrganisationsOf(ctx context.Context, userID string) ([]models.Organisation, error)
	// OrganisationOf returns the organisation only if userID is linked to it.
	OrganisationOf(ctx context.Context, userID, orgID string) (models.Organisation, error)
	MembersOf(ctx context.Context, orgID string) ([]models.User, error)
}

// TokenStore persists issued access tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, token models.AccessToken) error
	FindToken(ctx context.Context, id string) (models.AccessToken, error)
	TouchToken(ctx context.Context, id string, usedAt time.Time) error
}

// Repos groups the stores available inside and outside a transaction.
type Repos interface {
	Users() UserStore
	Organisations() OrganisationStore
	Memberships() MembershipStore
	Tokens() TokenStore
}

// Store is the root persistence handle. InTx runs fn atomically: either every
// write made through the supplied Repos commits or none does.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(tx Repos) error) error
	Close()
}
