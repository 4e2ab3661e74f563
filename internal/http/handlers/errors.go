package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/internal/http/respond"
	"github.com/hongminglow/orgs-be/internal/services"
)

// decode reads a JSON body into v. An empty body decodes as an empty object
// so that missing fields surface as validation errors.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, r, http.StatusBadRequest, respond.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// writeValidation answers 422 when err carries field errors.
func writeValidation(w http.ResponseWriter, r *http.Request, err error) bool {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	respond.Validation(w, r, verr.Fields)
	return true
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Ctx(r.Context()).Error().Err(err).Msg(msg)
	respond.Error(w, r, http.StatusInternalServerError, respond.StatusError, "Internal server error")
}
