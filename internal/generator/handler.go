package generator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/6ogo/learny-backend/internal/auth"
	"github.com/6ogo/learny-backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	// Guests may generate; an empty user id selects the local quota flow.
	userID, _ := auth.UserID(r)

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.Is(err, ErrLimitReached):
			writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: err.Error()})
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Flashcard generation returned unusable output"})
		default:
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
