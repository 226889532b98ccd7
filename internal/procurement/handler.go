// internal/procurement/handler.go
package procurement

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

// Routes mounts all procurement endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/suppliers", h.handleAddSupplier)
	r.Get("/suppliers", h.handleListSuppliers)
	r.Get("/suppliers/{id}", h.handleGetSupplier)
	r.Post("/orders", h.handleCreateOrder)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{id}", h.handleGetOrder)
	r.Post("/orders/{id}/lines", h.handleAddLine)
	r.Post("/orders/{id}/supplier", h.handleAssignSupplier)
	r.Post("/orders/{id}/send", h.handleSendOrder)
}

func (h *Handler) handleAddSupplier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
		Phone        string `json:"phone"`
		LeadTimeDays int    `json:"lead_time_days"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	supplier, err := h.service.AddSupplier(r.Context(), req.Name, req.ContactEmail, req.Phone, req.LeadTimeDays, req.Notes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(supplier)
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if suppliers == nil {
		suppliers = []*Supplier{}
	}
	json.NewEncoder(w).Encode(suppliers)
}

func (h *Handler) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid supplier ID", http.StatusBadRequest)
		return
	}

	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		writeProcurementError(w, err)
		return
	}

	json.NewEncoder(w).Encode(supplier)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SupplierID uuid.NullUUID `json:"supplier_id"`
		Notes      string        `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.service.CreatePurchaseOrder(r.Context(), req.SupplierID, req.Notes)
	if err != nil {
		writeProcurementError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListPurchaseOrders(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if orders == nil {
		orders = []*PurchaseOrder{}
	}
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeProcurementError(w, err)
		return
	}

	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req struct {
		PartID    uuid.UUID           `json:"part_id"`
		Quantity  int                 `json:"quantity"`
		UnitPrice decimal.NullDecimal `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	line, err := h.service.AddLine(r.Context(), id, req.PartID, req.Quantity, req.UnitPrice)
	if err != nil {
		writeProcurementError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(line)
}

func (h *Handler) handleAssignSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req struct {
		SupplierID uuid.UUID `json:"supplier_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AssignSupplier(r.Context(), id, req.SupplierID); err != nil {
		writeProcurementError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.service.SendPurchaseOrder(r.Context(), id, req.Actor)
	if err != nil {
		writeProcurementError(w, err)
		return
	}

	json.NewEncoder(w).Encode(order)
}

func writeProcurementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrNoSupplier), errors.Is(err, ErrEmptyOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSupplierNotFound), errors.Is(err, ErrPurchaseOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrOrderNotDraft):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
