package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/orgs-be/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register wires the health and welcome routes.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/", h.handleWelcome)
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handleWelcome(w http.ResponseWriter, r *http.Request) {
	respond.Raw(w, r, http.StatusOK, map[string]string{"hello": "world"})
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.Raw(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
