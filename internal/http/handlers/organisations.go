package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/models/dto"
	"github.com/hongminglow/orgs-be/internal/services"
)

// OrganisationHandler serves the organisation endpoints. Every route needs
// an authenticated caller.
type OrganisationHandler struct {
	orgs *services.Organisations
}

// NewOrganisationHandler constructs the handler.
func NewOrganisationHandler(orgs *services.Organisations) *OrganisationHandler {
	return &OrganisationHandler{orgs: orgs}
}

// Register attaches organisation routes to the router.
func (h *OrganisationHandler) Register(r chi.Router) {
	r.Get("/organisations", h.handleList)
	r.Post("/organisations", h.handleCreate)
	r.Get("/organisations/{orgId}", h.handleShow)
	r.Get("/organisations/{orgId}/users", h.handleMembers)
	r.Post("/organisations/{orgId}/users", h.handleAddMember)
}

func (h *OrganisationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	orgs, err := h.orgs.ListForUser(r.Context(), caller)
	if err != nil {
		writeInternal(w, r, err, "list organisations")
		return
	}
	respond.JSON(w, r, http.StatusOK, "Organisations retrieved successfully", dto.OrganisationList{Organisations: orgs})
}

func (h *OrganisationHandler) handleShow(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	org, err := h.orgs.GetForUser(r.Context(), caller, chi.URLParam(r, "orgId"))
	switch {
	case err == nil:
		respond.JSON(w, r, http.StatusOK, "Organisation retrieved successfully", org)
	case errors.Is(err, services.ErrNotFound):
		respond.JSON(w, r, http.StatusOK, "Organisation retrieved successfully", nil)
	default:
		writeInternal(w, r, err, "get organisation")
	}
}

func (h *OrganisationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req dto.CreateOrganisationRequest
	if !decode(w, r, &req) {
		return
	}

	org, err := h.orgs.Create(r.Context(), caller, req)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		writeInternal(w, r, err, "create organisation")
		return
	}
	respond.JSON(w, r, http.StatusCreated, "Organisation created successfully", org)
}

func (h *OrganisationHandler) handleMembers(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgId")
	if _, err := h.orgs.GetForUser(r.Context(), caller, orgID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.StatusNotFound, "Organisation was not found")
			return
		}
		writeInternal(w, r, err, "get organisation")
		return
	}

	users, err := h.orgs.Members(r.Context(), orgID)
	if err != nil {
		writeInternal(w, r, err, "list members")
		return
	}
	respond.JSON(w, r, http.StatusOK, "Members retrieved successfully", map[string]any{"users": users})
}

func (h *OrganisationHandler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFrom(w, r); !ok {
		return
	}
	var req dto.AddMemberRequest
	if !decode(w, r, &req) {
		return
	}

	_, err := h.orgs.AddMember(r.Context(), chi.URLParam(r, "orgId"), req)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.StatusNotFound, "Organisation was not found")
			return
		}
		writeInternal(w, r, err, "add member")
		return
	}
	respond.JSON(w, r, http.StatusCreated, "User added to organisation successfully", nil)
}

func callerFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.StatusUnauthorized, respond.MsgAuthRequired)
		return "", false
	}
	return user.ID, true
}
