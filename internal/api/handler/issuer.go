package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/equipreg/internal/api/request"
	"github.com/edvin/equipreg/internal/api/response"
	"github.com/edvin/equipreg/internal/model"
)

type Issuer struct {
	svc IssuerService
}

func NewIssuer(svc IssuerService) *Issuer {
	return &Issuer{svc: svc}
}

func (h *Issuer) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req request.AddIssuer
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.AddAuthorizedIssuer(r.Context(), caller, model.Identity(req.Issuer)); err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"issuer": req.Issuer, "authorized": true})
}

func (h *Issuer) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := request.RequireID(chi.URLParam(r, "identity"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	authorized, err := h.svc.IsAuthorizedIssuer(r.Context(), model.Identity(identity))
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"issuer": identity, "authorized": authorized})
}

func (h *Issuer) ContractOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok, err := h.svc.ContractOwner(r.Context())
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	if !ok {
		response.WriteError(w, http.StatusServiceUnavailable, "certification registry is not initialized")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"owner": string(owner)})
}
