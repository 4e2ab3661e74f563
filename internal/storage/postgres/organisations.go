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

const organisationColumns = `o.org_id, o.name, o.description, o.created_at, o.updated_at`

type organisationRepo struct {
	q querier
}

// CreateOrganisation inserts a new organisation, generating its id.
func (r organisationRepo) CreateOrganisation(ctx context.Context, org models.Organisation) (models.Organisation, error) {
	if err := storage.CheckOrganisation(org); err != nil {
		return models.Organisation{}, err
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}

	query := `
		INSERT INTO organisations AS o (org_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + organisationColumns
	created, err := scanOrganisation(r.q.QueryRow(ctx, query, org.ID, org.Name, org.Description))
	if err != nil {
		return models.Organisation{}, fmt.Errorf("create organisation: %w", err)
	}

	log.Debug().Str("org_id", created.ID).Str("name", created.Name).Msg("created organisation")
	return created, nil
}

// FindOrganisation fetches an organisation by id.
func (r organisationRepo) FindOrganisation(ctx context.Context, id string) (models.Organisation, error) {
	row := r.q.QueryRow(ctx, `SELECT `+organisationColumns+` FROM organisations o WHERE o.org_id = $1`, id)
	return scanOrganisation(row)
}

func scanOrganisation(row pgx.Row) (models.Organisation, error) {
	var org models.Organisation
	if err := row.Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return models.Organisation{}, mapPostgresError(err)
	}
	return org, nil
}
