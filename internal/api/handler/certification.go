package handler

import (
	"net/http"
	"time"

	"github.com/edvin/equipreg/internal/api/request"
	"github.com/edvin/equipreg/internal/api/response"
	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/registry"
)

type Certification struct {
	svc CertificationService
	now func() time.Time
}

func NewCertification(svc CertificationService) *Certification {
	return &Certification{svc: svc, now: time.Now}
}

// CertificationResponse reports a lookup; Certification is set only when Found.
type CertificationResponse struct {
	Found         bool                 `json:"found"`
	Certification *model.Certification `json:"certification,omitempty"`
}

// StatusResponse is the validity of a certification at a point in time.
type StatusResponse struct {
	Technician    string `json:"technician"`
	EquipmentType string `json:"equipment_type"`
	At            int64  `json:"at"`
	Status        string `json:"status"`
	Certified     bool   `json:"certified"`
}

func (h *Certification) Issue(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req request.IssueCertification
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := registry.IssueCertificationParams{
		Technician:         model.Identity(req.Technician),
		EquipmentType:      req.EquipmentType,
		CertificationDate:  req.CertificationDate,
		ExpirationDate:     req.ExpirationDate,
		CertificationLevel: req.CertificationLevel,
	}
	if err := h.svc.IssueCertification(r.Context(), caller, p); err != nil {
		writeRegistryError(w, err)
		return
	}

	cert, _, err := h.svc.GetCertification(r.Context(), p.Key())
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cert)
}

func (h *Certification) Get(w http.ResponseWriter, r *http.Request) {
	key, ok := queryKey(w, r)
	if !ok {
		return
	}

	cert, found, err := h.svc.GetCertification(r.Context(), key)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	if !found {
		response.WriteJSON(w, http.StatusNotFound, CertificationResponse{Found: false})
		return
	}

	response.WriteJSON(w, http.StatusOK, CertificationResponse{Found: true, Certification: &cert})
}

func (h *Certification) Status(w http.ResponseWriter, r *http.Request) {
	key, ok := queryKey(w, r)
	if !ok {
		return
	}

	at, err := request.ParseTimestamp(r.URL.Query().Get("at"), h.now().Unix())
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.svc.CertificationStatus(r.Context(), key, at)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, StatusResponse{
		Technician:    string(key.Technician),
		EquipmentType: key.EquipmentType,
		At:            at,
		Status:        status,
		Certified:     status == model.CertificationCertified,
	})
}

func (h *Certification) Revoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req request.CertificationKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := model.CertificationKey{Technician: model.Identity(req.Technician), EquipmentType: req.EquipmentType}
	if err := h.svc.RevokeCertification(r.Context(), caller, key); err != nil {
		writeRegistryError(w, err)
		return
	}

	cert, _, err := h.svc.GetCertification(r.Context(), key)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cert)
}

// queryKey reads the technician and equipment_type query parameters.
func queryKey(w http.ResponseWriter, r *http.Request) (model.CertificationKey, bool) {
	q := r.URL.Query()
	req := request.CertificationKey{
		Technician:    q.Get("technician"),
		EquipmentType: q.Get("equipment_type"),
	}
	if err := request.ParseQuery(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return model.CertificationKey{}, false
	}
	return model.CertificationKey{Technician: model.Identity(req.Technician), EquipmentType: req.EquipmentType}, true
}
