package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/metrics"
	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/models/dto"
	"github.com/hongminglow/orgs-be/internal/storage"
	"github.com/hongminglow/orgs-be/internal/validation"
)

var registerFieldOrder = []string{"firstName", "lastName", "email", "phone", "password"}

// AuthResult is what register and login hand back to the caller.
type AuthResult struct {
	User  models.User
	Token auth.IssuedToken
}

// Registration creates a user together with a default organisation.
type Registration struct {
	store    storage.Store
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	validate *validation.Validator
	recorder Recorder
}

// NewRegistration constructs the registration service. recorder may be nil.
func NewRegistration(store storage.Store, hasher *auth.PasswordHasher, tokens *auth.TokenManager, validate *validation.Validator, recorder Recorder) *Registration {
	return &Registration{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		recorder: recorderOrNop(recorder),
	}
}

// DefaultOrganisationName is the name given to a new user's home organisation.
func DefaultOrganisationName(firstName string) string {
	return firstName + "'s Organisation"
}

// DefaultOrganisationDescription describes a new user's home organisation.
func DefaultOrganisationDescription(user models.User) string {
	return "This organisation belongs to " + user.FullName()
}

// Register validates req, then writes user, default organisation and
// membership in one transaction and issues an access token.
func (s *Registration) Register(ctx context.Context, req dto.RegisterRequest) (AuthResult, error) {
	req = normaliseRegister(req)

	if err := s.check(ctx, req); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.recorder.ObserveRegistration(metrics.OutcomeRejected)
		} else {
			s.recorder.ObserveRegistration(metrics.OutcomeFailure)
		}
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.recorder.ObserveRegistration(metrics.OutcomeFailure)
		return AuthResult{}, &RegistrationError{Err: fmt.Errorf("hash password: %w", err)}
	}

	var user models.User
	err = s.store.InTx(ctx, func(tx storage.Repos) error {
		created, err := tx.Users().CreateUser(ctx, models.User{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return invalid(validation.NewFieldError("email", validation.RuleUnique))
			}
			return err
		}

		description := DefaultOrganisationDescription(created)
		org, err := tx.Organisations().CreateOrganisation(ctx, models.Organisation{
			Name:        DefaultOrganisationName(created.FirstName),
			Description: &description,
		})
		if err != nil {
			return err
		}

		if _, err := tx.Memberships().Link(ctx, created.ID, org.ID); err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.recorder.ObserveRegistration(metrics.OutcomeRejected)
			return AuthResult{}, verr
		}
		s.recorder.ObserveRegistration(metrics.OutcomeFailure)
		return AuthResult{}, &RegistrationError{Err: err}
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		s.recorder.ObserveRegistration(metrics.OutcomeFailure)
		log.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("issue token after registration")
		return AuthResult{User: user}, &RegistrationError{Err: err}
	}

	s.recorder.ObserveRegistration(metrics.OutcomeSuccess)
	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return AuthResult{User: user, Token: token}, nil
}

// check collects every field failure, including email uniqueness, before any
// write happens.
func (s *Registration) check(ctx context.Context, req dto.RegisterRequest) error {
	fields := s.validate.Struct(req)
	if !validation.Has(fields, "email") {
		_, err := s.store.Users().FindByEmail(ctx, req.Email)
		switch {
		case err == nil:
			fields = append(fields, validation.NewFieldError("email", validation.RuleUnique))
		case !errors.Is(err, storage.ErrNotFound):
			return &RegistrationError{Err: fmt.Errorf("check email: %w", err)}
		}
	}
	if len(fields) > 0 {
		validation.SortByOrder(fields, registerFieldOrder...)
		return invalid(fields...)
	}
	return nil
}

func normaliseRegister(req dto.RegisterRequest) dto.RegisterRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = storage.NormalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			req.Phone = nil
		} else {
			req.Phone = &phone
		}
	}
	return req
}
