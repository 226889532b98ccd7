// internal/tickets/handler.go
package tickets

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"liftops/internal/directory"
	"liftops/internal/inventory"
	"liftops/internal/workforce"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts all ticket endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/tickets", h.handleOpenTicket)
	r.Get("/tickets", h.handleListOpenTickets)
	r.Get("/tickets/{id}", h.handleGetTicket)
	r.Get("/tickets/{id}/timeline", h.handleGetTimeline)
	r.Post("/tickets/{id}/assign", h.handleAssignTechnician)
	r.Patch("/tickets/{id}/status", h.handleUpdateStatus)
	r.Post("/tickets/{id}/parts", h.handleUseParts)
	r.Get("/elevators/{elevatorID}/tickets", h.handleListByElevator)
}

func (h *Handler) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ElevatorID  uuid.UUID `json:"elevator_id"`
		Priority    string    `json:"priority"`
		Summary     string    `json:"summary"`
		Description string    `json:"description"`
		ReportedBy  string    `json:"reported_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.service.OpenTicket(r.Context(), req.ElevatorID, TicketPriority(req.Priority), req.Summary, req.Description, req.ReportedBy)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) handleListOpenTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.ListOpenTickets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if tickets == nil {
		tickets = []*Ticket{}
	}
	json.NewEncoder(w).Encode(tickets)
}

func (h *Handler) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	entries, err := h.service.GetTimeline(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	json.NewEncoder(w).Encode(entries)
}

func (h *Handler) handleAssignTechnician(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	var req struct {
		TechnicianID uuid.UUID `json:"technician_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.service.AssignTechnician(r.Context(), id, req.TechnicianID)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
		Actor  string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.service.UpdateStatus(r.Context(), id, TicketStatus(req.Status), req.Actor)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	json.NewEncoder(w).Encode(ticket)
}

func (h *Handler) handleUseParts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ticket ID", http.StatusBadRequest)
		return
	}

	var req struct {
		inventory.UsageRequest
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.UseParts(r.Context(), id, req.UsageRequest, req.Actor)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	if result.Record != nil {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleListByElevator(w http.ResponseWriter, r *http.Request) {
	elevatorID, err := uuid.Parse(chi.URLParam(r, "elevatorID"))
	if err != nil {
		http.Error(w, "invalid elevator ID", http.StatusBadRequest)
		return
	}

	tickets, err := h.service.ListTicketsByElevator(r.Context(), elevatorID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if tickets == nil {
		tickets = []*Ticket{}
	}
	json.NewEncoder(w).Encode(tickets)
}

func writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptySummary), errors.Is(err, inventory.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTicketNotFound),
		errors.Is(err, directory.ErrElevatorNotFound),
		errors.Is(err, workforce.ErrTechnicianNotFound),
		errors.Is(err, inventory.ErrPartNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrTicketClosed), errors.Is(err, inventory.ErrStockConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
