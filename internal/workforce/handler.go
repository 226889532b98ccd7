// internal/workforce/handler.go
package workforce

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

// Routes mounts all workforce endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/technicians", h.handleRegister)
	r.Get("/technicians/{id}", h.handleGetTechnician)
	r.Patch("/technicians/{id}/specialization", h.handleUpdateSpecialization)
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email          string `json:"email"`
		Name           string `json:"name"`
		Phone          string `json:"phone"`
		Password       string `json:"password"`
		Specialization string `json:"specialization"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	technician, err := h.service.RegisterTechnician(r.Context(), req.Email, req.Name, req.Phone, req.Password, Specialization(req.Specialization))
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(technician)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	technician, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	// In a real deployment a session token would be issued here.
	json.NewEncoder(w).Encode(technician)
}

func (h *Handler) handleGetTechnician(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid technician ID", http.StatusBadRequest)
		return
	}

	technician, err := h.service.GetTechnician(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTechnicianNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(technician)
}

func (h *Handler) handleUpdateSpecialization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid technician ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Specialization string `json:"specialization"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateSpecialization(r.Context(), id, Specialization(req.Specialization)); err != nil {
		if errors.Is(err, ErrTechnicianNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
