package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/services"
)

// UserHandler serves user records to their owners.
type UserHandler struct {
	identity *services.Identity
}

// NewUserHandler constructs the handler.
func NewUserHandler(identity *services.Identity) *UserHandler {
	return &UserHandler{identity: identity}
}

// Register attaches user routes to the router.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users/{id}", h.handleShow)
}

func (h *UserHandler) handleShow(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.StatusUnauthorized, respond.MsgAuthRequired)
		return
	}

	user, err := h.identity.GetUser(r.Context(), caller.ID, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		respond.JSON(w, r, http.StatusOK, "User retrieved successfully", user)
	case errors.Is(err, services.ErrAuthorization):
		respond.Error(w, r, http.StatusUnauthorized, respond.StatusUnauthorized, respond.MsgPermissionDenied)
	case errors.Is(err, services.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, respond.StatusBadRequest, "User not found")
	default:
		writeInternal(w, r, err, "fetch user")
	}
}
