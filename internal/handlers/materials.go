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

// MaterialHandler exposes the raw-material inventory endpoints
type MaterialHandler struct {
	service *services.MaterialService
}

func NewMaterialHandler(service *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// CreateMaterialRequest is the request body for adding a material
type CreateMaterialRequest struct {
	Name             string  `json:"name" validate:"required,min=1,max=100"`
	Unit             string  `json:"unit" validate:"required,oneof=kg t m3 l pcs"`
	StockLevel       float64 `json:"stockLevel" validate:"gte=0"`
	ReorderThreshold float64 `json:"reorderThreshold" validate:"gte=0"`
}

// AdjustStockRequest is the request body for a signed stock adjustment
type AdjustStockRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

// UpdateMaterialRequest is the request body for editing a material
type UpdateMaterialRequest struct {
	Name             string  `json:"name" validate:"required,min=1,max=100"`
	Unit             string  `json:"unit" validate:"required,oneof=kg t m3 l pcs"`
	ReorderThreshold float64 `json:"reorderThreshold" validate:"gte=0"`
}

// List handles GET /materials
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list materials")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"materials": materials})
}

// Get handles GET /materials/{id}
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	material, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Material not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to get material")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, material)
}

// Create handles POST /materials
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	material, err := h.service.Create(r.Context(), req.Name, req.Unit, req.StockLevel, req.ReorderThreshold)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "A material with this name already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to create material")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, material)
}

// AdjustStock handles PATCH /materials/{id}/stock. Deliveries carry a
// positive delta, consumption a negative one; stock never goes below zero.
func (h *MaterialHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	material, err := h.service.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Material not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Adjustment would take stock below zero")
		default:
			pkghttp.WriteInternalError(w, "Failed to adjust stock")
		}
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, material)
}

// Update handles PUT /materials/{id}
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	material, err := h.service.Update(r.Context(), &models.Material{
		ID:               id,
		Name:             req.Name,
		Unit:             req.Unit,
		ReorderThreshold: req.ReorderThreshold,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Material not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update material")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, material)
}

// Delete handles DELETE /materials/{id}
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Material not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
