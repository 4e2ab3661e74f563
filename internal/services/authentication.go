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

// Authentication logs users in and resolves bearer tokens.
type Authentication struct {
	identity *Identity
	users    storage.UserStore
	tokens   *auth.TokenManager
	validate *validation.Validator
	recorder Recorder
}

// NewAuthentication constructs the authentication service. recorder may be nil.
func NewAuthentication(identity *Identity, users storage.UserStore, tokens *auth.TokenManager, validate *validation.Validator, recorder Recorder) *Authentication {
	return &Authentication{
		identity: identity,
		users:    users,
		tokens:   tokens,
		validate: validate,
		recorder: recorderOrNop(recorder),
	}
}

// Login verifies credentials and issues a fresh token. Wrong password and
// unknown email both yield ErrAuthentication.
func (s *Authentication) Login(ctx context.Context, req dto.LoginRequest) (AuthResult, error) {
	req.Email = storage.NormalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if fields := s.validate.Struct(req); len(fields) > 0 {
		s.recorder.ObserveLogin(metrics.OutcomeRejected)
		return AuthResult{}, invalid(fields...)
	}

	user, err := s.identity.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		s.recorder.ObserveLogin(metrics.OutcomeFailure)
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		s.recorder.ObserveLogin(metrics.OutcomeFailure)
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.recorder.ObserveLogin(metrics.OutcomeSuccess)
	log.Ctx(ctx).Debug().Str("user_id", user.ID).Str("token_id", token.ID).Msg("user logged in")
	return AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a presented bearer value to its owner.
func (s *Authentication) Authenticate(ctx context.Context, presented string) (models.User, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return models.User{}, fmt.Errorf("%w: missing token", ErrAuthentication)
	}

	token, err := s.tokens.Verify(ctx, presented)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return models.User{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return models.User{}, fmt.Errorf("verify token: %w", err)
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: token owner missing", ErrAuthentication)
		}
		return models.User{}, fmt.Errorf("load token owner: %w", err)
	}
	return user, nil
}
