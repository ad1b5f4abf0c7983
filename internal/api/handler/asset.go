package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/equipreg/internal/api/request"
	"github.com/edvin/equipreg/internal/api/response"
	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/registry"
)

type Asset struct {
	svc AssetService
}

func NewAsset(svc AssetService) *Asset {
	return &Asset{svc: svc}
}

// AssetResponse reports a lookup; Asset is set only when Found.
type AssetResponse struct {
	Found bool         `json:"found"`
	Asset *model.Asset `json:"asset,omitempty"`
}

func (h *Asset) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req request.RegisterAsset
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.svc.RegisterAsset(r.Context(), caller, registry.RegisterAssetParams{
		Name:               req.Name,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		Manufacturer:       req.Manufacturer,
		InstallationDate:   req.InstallationDate,
		WarrantyExpiration: req.WarrantyExpiration,
	})
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]model.AssetID{"id": id})
}

func (h *Asset) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, found, err := h.svc.GetAsset(r.Context(), model.AssetID(id))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	if !found {
		response.WriteJSON(w, http.StatusNotFound, AssetResponse{Found: false})
		return
	}

	response.WriteJSON(w, http.StatusOK, AssetResponse{Found: true, Asset: &asset})
}

func (h *Asset) LastID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.LastAssetID(r.Context())
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]model.AssetID{"last_asset_id": id})
}

func (h *Asset) Transfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.TransferAsset
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	newOwner := model.Identity(req.NewOwner)
	if err := h.svc.TransferAsset(r.Context(), caller, model.AssetID(id), newOwner); err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "owner": newOwner})
}
