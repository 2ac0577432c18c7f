package flashcards

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/6ogo/learny-backend/internal/auth"
	"github.com/6ogo/learny-backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
	}
	return userID, ok
}

// ── Cards ───────────────────────────────────────────────

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var (
		cards []models.Flashcard
		err   error
	)
	if r.URL.Query().Get("due") == "true" {
		cards, err = h.service.ListDueCards(r.Context(), userID)
	} else {
		cards, err = h.service.ListCards(r.Context(), userID)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list flashcards"})
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.CreateCard(r.Context(), userID, req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var patch models.UpdateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.UpdateCard(r.Context(), userID, mux.Vars(r)["id"], patch)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteCard(r.Context(), userID, mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete flashcard"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AnswerCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.AnswerCard(r.Context(), userID, mux.Vars(r)["id"], req.Correct)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record answer"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetLearned(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.LearnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.SetLearned(r.Context(), userID, mux.Vars(r)["id"], req.Learned)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update flashcard"})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) ReportCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.ReportCard(r.Context(), mux.Vars(r)["id"], req.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to report flashcard"})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ── Catalog ─────────────────────────────────────────────

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list categories"})
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	// Completion state is merged in only for authenticated callers.
	userID, _ := auth.UserID(r)

	modules, err := h.service.ListModules(r.Context(), userID, r.URL.Query().Get("category"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list modules"})
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	module, cards, err := h.service.GetModuleCards(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load module"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"module": module,
		"cards":  cards,
	})
}

// ── Sessions & Activity ─────────────────────────────────

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ModuleID string `json:"module_id"`
	}
	// Body is optional; a free study session has no module.
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess, err := h.service.StartSession(r.Context(), userID, req.ModuleID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start session"})
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.FinishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	earned, err := h.service.FinishSession(r.Context(), userID, mux.Vars(r)["id"], req)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found or already finished"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"new_achievements": earned})
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	activity, err := h.service.GetActivity(r.Context(), userID, days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to aggregate activity"})
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// ── Exams ───────────────────────────────────────────────

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	exam, err := h.service.GetExam(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.SubmitExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.SubmitExam(r.Context(), userID, mux.Vars(r)["id"], req)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Admin ───────────────────────────────────────────────

func (h *Handler) ListReportedCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.store.ListReportedCards(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list reported flashcards"})
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) ApproveCard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.store.ApproveCard(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to approve flashcard"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
