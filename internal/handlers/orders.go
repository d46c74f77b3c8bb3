package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	pkghttp "github.com/hormatech/blockplant/pkg/http"
)

// OrderHandler exposes the production-order endpoints
type OrderHandler struct {
	service *services.OrderService
}

func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrderRequest is the request body for creating a production order
type CreateOrderRequest struct {
	BlockType string     `json:"blockType" validate:"required,min=1,max=100"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// ProgressOrderRequest is the request body for recording order progress
type ProgressOrderRequest struct {
	QuantityProduced int    `json:"quantityProduced" validate:"gte=0"`
	Status           string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
}

// List handles GET /orders with an optional ?status= filter
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	orders, err := h.service.List(r.Context(), status)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list orders")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Get handles GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Order not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to get order")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, order)
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	createdBy := ""
	if claims := auth.GetUserFromContext(r); claims != nil {
		createdBy = claims.UserID
	}

	order, err := h.service.Create(r.Context(), req.BlockType, req.Quantity, req.DueDate, createdBy)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Quantity must be positive")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to create order")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, order)
}

// Progress handles PATCH /orders/{id}/progress
func (h *OrderHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProgressOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	order, err := h.service.Progress(r.Context(), id, req.QuantityProduced, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Order not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid progress update or status transition")
		default:
			pkghttp.WriteInternalError(w, "Failed to update order")
		}
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Order not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
