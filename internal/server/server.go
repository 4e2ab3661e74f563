package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/config"
	"github.com/hongminglow/orgs-be/internal/http/handlers"
	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/metrics"
	"github.com/hongminglow/orgs-be/internal/middleware"
	"github.com/hongminglow/orgs-be/internal/services"
	"github.com/hongminglow/orgs-be/internal/storage"
	"github.com/hongminglow/orgs-be/internal/validation"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires services, middleware and routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger zerolog.Logger) *Server {
	m := metrics.New()
	validate := validation.New()
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, store.Tokens())

	identity := services.NewIdentity(store.Users(), hasher)
	registration := services.NewRegistration(store, hasher, tokens, validate, m)
	authentication := services.NewAuthentication(identity, store.Users(), tokens, validate, m)
	access := services.NewAccessControl(authentication)
	orgs := services.NewOrganisations(store, validate)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover)
	r.Use(m.Instrument)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, respond.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed", "Method not allowed")
	})

	handlers.NewHealthHandler(time.Now()).Register(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthBurst))
		handlers.NewAuthHandler(registration, authentication).Register(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(access))
		handlers.NewUserHandler(identity).Register(r)
		handlers.NewOrganisationHandler(orgs).Register(r)
	})

	handler := middleware.CORS(cfg.CORSOrigins, r)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler exposes the root handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
