package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS adds Access-Control headers for allowed origins and answers preflight
// requests. A "*" entry allows every origin.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	}
	// Credentialed requests cannot be combined with a wildcard origin.
	opts.AllowCredentials = !slices.Contains(allowedOrigins, "*")
	return cors.New(opts).Handler(next)
}
