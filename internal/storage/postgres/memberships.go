package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/models"
)

type membershipRepo struct {
	q querier
}

// Link inserts the (user, organisation) pair. The unique constraint decides
// concurrent duplicates, so a lost race reads as "already linked".
func (r membershipRepo) Link(ctx context.Context, userID, orgID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO org_user (user_id, org_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, org_id) DO NOTHING`, userID, orgID)
	if err != nil {
		return false, fmt.Errorf("link membership: %w", mapPostgresError(err))
	}

	created := tag.RowsAffected() == 1
	log.Debug().Str("user_id", userID).Str("org_id", orgID).Bool("created", created).Msg("linked membership")
	return created, nil
}

// OrganisationsOf lists the organisations a user belongs to, oldest first.
func (r membershipRepo) OrganisationsOf(ctx context.Context, userID string) ([]models.Organisation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+organisationColumns+`
		FROM organisations o
		JOIN org_user ou ON ou.org_id = o.org_id
		WHERE ou.user_id = $1
		ORDER BY o.created_at, o.org_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", mapPostgresError(err))
	}
	orgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Organisation, error) {
		return scanOrganisation(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	return orgs, nil
}

// OrganisationOf fetches one organisation through the membership join.
func (r membershipRepo) OrganisationOf(ctx context.Context, userID, orgID string) (models.Organisation, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+organisationColumns+`
		FROM organisations o
		JOIN org_user ou ON ou.org_id = o.org_id
		WHERE ou.user_id = $1 AND o.org_id = $2`, userID, orgID)
	return scanOrganisation(row)
}

// MembersOf lists the users linked to an organisation, oldest first.
func (r membershipRepo) MembersOf(ctx context.Context, orgID string) ([]models.User, error) {
	rows, err := r.q.Query(ctx, `
		SELECT u.user_id, u.first_name, u.last_name, u.email, u.phone, u.password_hash, u.created_at, u.updated_at
		FROM users u
		JOIN org_user ou ON ou.user_id = u.user_id
		WHERE ou.org_id = $1
		ORDER BY u.created_at, u.user_id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", mapPostgresError(err))
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return users, nil
}
