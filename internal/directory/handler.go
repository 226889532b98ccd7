// internal/directory/handler.go
package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts all directory endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/clients", h.handleAddClient)
	r.Get("/clients", h.handleListClients)
	r.Get("/clients/{id}", h.handleGetClient)
	r.Post("/clients/{id}/buildings", h.handleAddBuilding)
	r.Get("/clients/{id}/buildings", h.handleListBuildings)
	r.Get("/buildings/{id}", h.handleGetBuilding)
	r.Post("/buildings/{id}/elevators", h.handleAddElevator)
	r.Get("/elevators/{id}", h.handleGetElevator)
	r.Patch("/elevators/{id}/status", h.handleUpdateElevatorStatus)
	r.Get("/search", h.handleSearch)
}

func (h *Handler) handleAddClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		ContactEmail   string `json:"contact_email"`
		ContactPhone   string `json:"contact_phone"`
		BillingAddress string `json:"billing_address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	client, err := h.service.AddClient(r.Context(), req.Name, req.ContactEmail, req.ContactPhone, req.BillingAddress)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if clients == nil {
		clients = []*Client{}
	}
	json.NewEncoder(w).Encode(clients)
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid client ID", http.StatusBadRequest)
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(client)
}

func (h *Handler) handleAddBuilding(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid client ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Address     string `json:"address"`
		AccessNotes string `json:"access_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	building, err := h.service.AddBuilding(r.Context(), clientID, req.Name, req.Address, req.AccessNotes)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(building)
}

func (h *Handler) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid client ID", http.StatusBadRequest)
		return
	}

	buildings, err := h.service.ListBuildingsByClient(r.Context(), clientID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if buildings == nil {
		buildings = []*Building{}
	}
	json.NewEncoder(w).Encode(buildings)
}

func (h *Handler) handleGetBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid building ID", http.StatusBadRequest)
		return
	}

	building, err := h.service.GetBuilding(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(building)
}

func (h *Handler) handleAddElevator(w http.ResponseWriter, r *http.Request) {
	buildingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid building ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Serial       string `json:"serial"`
		Manufacturer string `json:"manufacturer"`
		Model        string `json:"model"`
		CapacityKg   int    `json:"capacity_kg"`
		FloorsServed int    `json:"floors_served"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	elevator, err := h.service.AddElevator(r.Context(), buildingID, req.Serial, req.Manufacturer, req.Model, req.CapacityKg, req.FloorsServed)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(elevator)
}

func (h *Handler) handleGetElevator(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid elevator ID", http.StatusBadRequest)
		return
	}

	elevator, err := h.service.GetElevator(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(elevator)
}

func (h *Handler) handleUpdateElevatorStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid elevator ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateElevatorStatus(r.Context(), id, ElevatorStatus(req.Status)); err != nil {
		writeDirectoryError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing search query", http.StatusBadRequest)
		return
	}

	buildings, err := h.service.Search(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if buildings == nil {
		buildings = []*Building{}
	}
	json.NewEncoder(w).Encode(buildings)
}

func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrBuildingNotFound), errors.Is(err, ErrElevatorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
