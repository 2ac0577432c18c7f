package profile

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/6ogo/learny-backend/internal/auth"
	"github.com/6ogo/learny-backend/internal/models"
)

type Handler struct {
	service *Service
	local   LocalState
}

func NewHandler(service *Service, local LocalState) *Handler {
	return &Handler{service: service, local: local}
}

// GetProfile runs the synchronizer and returns the reconciled profile.
// A degraded response means the remote fetch missed its deadline and the
// tier/admin fields are defaults, not loaded values. Unauthenticated
// callers get the guest flow backed by the local store.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusOK, GuestSync(h.local, time.Now()))
		return
	}

	resp, err := h.service.Sync(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkAchievementDisplayed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.MarkDisplayedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AchievementID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.MarkDisplayed(r.Context(), userID, req.AchievementID); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update achievement"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
