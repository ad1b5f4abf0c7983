package handler

import (
	"errors"
	"net/http"

	mw "github.com/edvin/equipreg/internal/api/middleware"
	"github.com/edvin/equipreg/internal/api/response"
	"github.com/edvin/equipreg/internal/registry"
)

// requireCaller returns the authenticated caller. Returns false and writes an
// error response outside the Auth middleware.
func requireCaller(w http.ResponseWriter, r *http.Request) (registry.Caller, bool) {
	caller, ok := mw.GetCaller(r.Context())
	if !ok {
		response.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return "", false
	}
	return caller, true
}

// statusForError maps a registry error kind to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrNotOwner), errors.Is(err, registry.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrInvalidDateRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, registry.ErrAlreadyInitialized):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeRegistryError(w http.ResponseWriter, err error) {
	response.WriteErrorCode(w, statusForError(err), err.Error(), registry.Code(err))
}
