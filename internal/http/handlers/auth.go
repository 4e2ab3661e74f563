package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/models/dto"
	"github.com/hongminglow/orgs-be/internal/services"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	registration   *services.Registration
	authentication *services.Authentication
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(registration *services.Registration, authentication *services.Authentication) *AuthHandler {
	return &AuthHandler{registration: registration, authentication: authentication}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.registration.Register(r.Context(), req)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("registration failed")
		respond.Error(w, r, http.StatusUnauthorized, respond.StatusBadRequest, "Registration unsuccessful")
		return
	}

	respond.JSON(w, r, http.StatusCreated, "Registration successful", dto.AuthResponse{
		AccessToken: result.Token.Value,
		User:        result.User,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.authentication.Login(r.Context(), req)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		if !errors.Is(err, services.ErrAuthentication) {
			log.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		}
		respond.Error(w, r, http.StatusUnauthorized, respond.StatusBadRequest, "Authentication failed")
		return
	}

	respond.JSON(w, r, http.StatusCreated, "Login successful", dto.AuthResponse{
		AccessToken: result.Token.Value,
		User:        result.User,
	})
}
