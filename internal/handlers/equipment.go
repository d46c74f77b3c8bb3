package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	pkghttp "github.com/hormatech/blockplant/pkg/http"
)

// EquipmentHandler exposes the plant-floor equipment endpoints
type EquipmentHandler struct {
	service *services.EquipmentService
}

func NewEquipmentHandler(service *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// CreateEquipmentRequest is the request body for registering a machine
type CreateEquipmentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Kind string `json:"kind" validate:"required,min=1,max=100"`
}

// SetEquipmentStatusRequest is the request body for a status change
type SetEquipmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational maintenance retired"`
}

// RecordMaintenanceRequest is the request body for logging maintenance work
type RecordMaintenanceRequest struct {
	Note string `json:"note" validate:"required,min=1,max=500"`
}

// List handles GET /equipment
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list equipment")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"equipment": equipment})
}

// Get handles GET /equipment/{id}
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	machine, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Equipment not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to get equipment")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, machine)
}

// Create handles POST /equipment
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	machine, err := h.service.Create(r.Context(), req.Name, req.Kind)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to create equipment")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, machine)
}

// SetStatus handles PATCH /equipment/{id}/status
func (h *EquipmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetEquipmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	machine, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Equipment not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid equipment status")
		default:
			pkghttp.WriteInternalError(w, "Failed to update equipment status")
		}
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, machine)
}

// RecordMaintenance handles POST /equipment/{id}/maintenance
func (h *EquipmentHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RecordMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	machine, err := h.service.RecordMaintenance(r.Context(), id, req.Note)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Equipment not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to record maintenance")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, machine)
}

// Delete handles DELETE /equipment/{id}
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Equipment not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
