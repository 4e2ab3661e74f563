package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/hongminglow/orgs-be/internal/http/respond"
)

// Recover turns a panicking handler into a 500 failure envelope and logs the
// stack. http.ErrAbortHandler is re-raised so net/http can abort the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")

			if r.Header.Get("Connection") != "Upgrade" {
				respond.Error(w, r, http.StatusInternalServerError, respond.StatusError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
