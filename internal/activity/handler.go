// internal/activity/handler.go
package activity

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

// Routes mounts all activity endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/entries", h.handleRecord)
	r.Get("/subjects/{subjectType}/{subjectID}/entries", h.handleListBySubject)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recorded, err := h.service.Record(r.Context(), &entry)
	if err != nil {
		if errors.Is(err, ErrEmptyDescription) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(recorded)
}

func (h *Handler) handleListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID, err := uuid.Parse(chi.URLParam(r, "subjectID"))
	if err != nil {
		http.Error(w, "invalid subject ID", http.StatusBadRequest)
		return
	}

	entries, err := h.service.ListBySubject(r.Context(), chi.URLParam(r, "subjectType"), subjectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []*Entry{}
	}
	json.NewEncoder(w).Encode(entries)
}
