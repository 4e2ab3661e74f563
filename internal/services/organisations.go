package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/models/dto"
	"github.com/hongminglow/orgs-be/internal/storage"
	"github.com/hongminglow/orgs-be/internal/validation"
)

// Organisations serves organisation reads and writes for authenticated users.
type Organisations struct {
	store    storage.Store
	validate *validation.Validator
}

// NewOrganisations constructs the organisation service.
func NewOrganisations(store storage.Store, validate *validation.Validator) *Organisations {
	return &Organisations{store: store, validate: validate}
}

// ListForUser returns every organisation userID belongs to, never nil.
func (s *Organisations) ListForUser(ctx context.Context, userID string) ([]models.Organisation, error) {
	orgs, err := s.store.Memberships().OrganisationsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	if orgs == nil {
		orgs = []models.Organisation{}
	}
	return orgs, nil
}

// GetForUser returns the organisation only when userID is a member, so
// organisations the caller does not belong to look absent.
func (s *Organisations) GetForUser(ctx context.Context, userID, orgID string) (models.Organisation, error) {
	org, err := s.store.Memberships().OrganisationOf(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Organisation{}, fmt.Errorf("%w: organisation %s", ErrNotFound, orgID)
		}
		return models.Organisation{}, fmt.Errorf("get organisation: %w", err)
	}
	return org, nil
}

// Create makes a new organisation with ownerID as its first member.
func (s *Organisations) Create(ctx context.Context, ownerID string, req dto.CreateOrganisationRequest) (models.Organisation, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		req.Description = &description
	}
	if fields := s.validate.Struct(req); len(fields) > 0 {
		return models.Organisation{}, invalid(fields...)
	}

	var org models.Organisation
	err := s.store.InTx(ctx, func(tx storage.Repos) error {
		created, err := tx.Organisations().CreateOrganisation(ctx, models.Organisation{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			if errors.Is(err, storage.ErrConstraint) {
				return invalid(validation.NewFieldError("name", validation.RuleRequired))
			}
			return err
		}
		if _, err := tx.Memberships().Link(ctx, ownerID, created.ID); err != nil {
			return err
		}
		org = created
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return models.Organisation{}, verr
		}
		return models.Organisation{}, fmt.Errorf("create organisation: %w", err)
	}

	log.Ctx(ctx).Info().Str("org_id", org.ID).Str("owner_id", ownerID).Msg("organisation created")
	return org, nil
}

// AddMember links req.UserID to orgID. Linking an existing member succeeds
// without a second row; the bool reports whether a row was added.
func (s *Organisations) AddMember(ctx context.Context, orgID string, req dto.AddMemberRequest) (bool, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if fields := s.validate.Struct(req); len(fields) > 0 {
		return false, invalid(fields...)
	}

	if _, err := s.store.Organisations().FindOrganisation(ctx, orgID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%w: organisation %s", ErrNotFound, orgID)
		}
		return false, fmt.Errorf("find organisation: %w", err)
	}
	if _, err := s.store.Users().FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, invalid(validation.NewFieldError("userId", validation.RuleExists))
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	created, err := s.store.Memberships().Link(ctx, req.UserID, orgID)
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	log.Ctx(ctx).Info().Str("org_id", orgID).Str("user_id", req.UserID).Bool("created", created).Msg("member added")
	return created, nil
}

// Members lists the users of an organisation.
func (s *Organisations) Members(ctx context.Context, orgID string) ([]models.User, error) {
	users, err := s.store.Memberships().MembersOf(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return users, nil
}
