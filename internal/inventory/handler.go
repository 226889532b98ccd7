// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts all inventory endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/parts", h.handleAddPart)
	r.Get("/parts/low-stock", h.handleListLowStock)
	r.Get("/parts/{id}", h.handleGetPart)
	r.Post("/parts/{id}/restock", h.handleRestock)
	r.Post("/usage/evaluate", h.handleEvaluateUsage)
	r.Post("/usage", h.handleRecordUsage)
	r.Delete("/usage/{id}", h.handleDeleteUsage)
	r.Get("/tickets/{ticketID}/usage", h.handleListUsage)
}

func (h *Handler) handleAddPart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU           string              `json:"sku"`
		Name          string              `json:"name"`
		Category      string              `json:"category"`
		UnitPrice     decimal.NullDecimal `json:"unit_price"`
		InitialStock  int                 `json:"initial_stock"`
		MinStockLevel int                 `json:"min_stock_level"`
		ReorderPoint  int                 `json:"reorder_point"`
		Location      string              `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	part, err := h.service.AddPart(r.Context(), req.SKU, req.Name, PartCategory(req.Category), req.UnitPrice, req.InitialStock, req.MinStockLevel, req.ReorderPoint, req.Location)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(part)
}

func (h *Handler) handleGetPart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid part ID", http.StatusBadRequest)
		return
	}

	part, err := h.service.GetPart(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(part)
}

func (h *Handler) handleListLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListLowStock(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if parts == nil {
		parts = []*Part{}
	}
	json.NewEncoder(w).Encode(parts)
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid part ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	part, err := h.service.RestockPart(r.Context(), id, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(part)
}

func (h *Handler) handleEvaluateUsage(w http.ResponseWriter, r *http.Request) {
	var req UsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decision, err := h.service.EvaluateUsage(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(decision)
}

func (h *Handler) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UsageRequest
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.RecordUsage(r.Context(), req.UsageRequest, req.Actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.Record != nil {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleDeleteUsage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid usage record ID", http.StatusBadRequest)
		return
	}

	actor := r.URL.Query().Get("actor")
	if err := h.service.DeleteUsageRecord(r.Context(), id, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListUsage(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	records, err := h.service.ListUsageByTicket(r.Context(), ticketID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if records == nil {
		records = []*UsageRecord{}
	}
	json.NewEncoder(w).Encode(records)
}

// writeServiceError maps the service error taxonomy onto HTTP status codes,
// keeping the "stock changed at commit time" cause distinguishable.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPartNotFound), errors.Is(err, ErrUsageRecordNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrStockConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
