package flashcards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/6ogo/learny-backend/internal/profile"
	"github.com/6ogo/learny-backend/internal/stats"
	"github.com/google/uuid"
)

// ReportThreshold is the report count at which a card is pulled from the
// approved pool pending admin review.
const ReportThreshold = 5

type Service struct {
	store    *Store
	profiles *profile.Store
}

func NewService(store *Store, profiles *profile.Store) *Service {
	return &Service{store: store, profiles: profiles}
}

// ── Cards ───────────────────────────────────────────────

func (s *Service) CreateCard(ctx context.Context, userID string, req models.CreateFlashcardRequest) (*models.Flashcard, error) {
	if req.Question == "" || req.Answer == "" || req.Category == "" {
		return nil, fmt.Errorf("question, answer, and category are required")
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyBeginner
	}
	if !models.ValidDifficulties[req.Difficulty] {
		return nil, fmt.Errorf("invalid difficulty %q", req.Difficulty)
	}

	card := &models.Flashcard{
		ID:            uuid.NewString(),
		UserID:        userID,
		Question:      req.Question,
		Answer:        req.Answer,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Difficulty:    req.Difficulty,
		ReportReasons: []string{},
		IsApproved:    true,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return s.store.GetCard(ctx, card.ID)
}

// UpdateCard applies an explicit patch: only the enumerated fields can
// change, and only when present in the request.
func (s *Service) UpdateCard(ctx context.Context, userID, cardID string, patch models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	card, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if patch.Question != nil {
		card.Question = *patch.Question
	}
	if patch.Answer != nil {
		card.Answer = *patch.Answer
	}
	if patch.Category != nil {
		card.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		card.Subcategory = *patch.Subcategory
	}
	if patch.Difficulty != nil {
		if !models.ValidDifficulties[*patch.Difficulty] {
			return nil, fmt.Errorf("invalid difficulty %q", *patch.Difficulty)
		}
		card.Difficulty = *patch.Difficulty
	}
	if patch.ReviewLater != nil {
		card.ReviewLater = *patch.ReviewLater
	}

	if card.Question == "" || card.Answer == "" || card.Category == "" {
		return nil, fmt.Errorf("question, answer, and category cannot be empty")
	}

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, userID, cardID string) error {
	return s.store.DeleteCard(ctx, cardID, userID)
}

func (s *Service) ListCards(ctx context.Context, userID string) ([]models.Flashcard, error) {
	return s.store.ListCardsByUser(ctx, userID)
}

func (s *Service) ListDueCards(ctx context.Context, userID string) ([]models.Flashcard, error) {
	return s.store.ListDueCards(ctx, userID, time.Now())
}

// ownedCard fetches a card for content edits. Catalog cards have no owner
// and are not editable here; they change through seeding and the admin
// approval flow.
func (s *Service) ownedCard(ctx context.Context, userID, cardID string) (*models.Flashcard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(card, userID) {
		return nil, sql.ErrNoRows
	}
	return card, nil
}

func ownedBy(card *models.Flashcard, userID string) bool {
	return userID != "" && card.UserID == userID
}

// progressCardID is the stable id of a user's private copy of a catalog
// card, so repeated answers land on one row instead of spawning new copies.
func progressCardID(userID, catalogID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"/"+catalogID)).String()
}

// userCopy clones a catalog card into the user's collection with fresh
// progress. Shared rows must never carry one user's counters or schedule.
func userCopy(card models.Flashcard, userID string) models.Flashcard {
	return models.Flashcard{
		ID:            progressCardID(userID, card.ID),
		UserID:        userID,
		Question:      card.Question,
		Answer:        card.Answer,
		Category:      card.Category,
		Subcategory:   card.Subcategory,
		Difficulty:    card.Difficulty,
		ReportReasons: []string{},
		IsApproved:    card.IsApproved,
	}
}

// studyCard returns the caller's own row for recording study progress. A
// catalog card is copied into the user's collection on first use.
func (s *Service) studyCard(ctx context.Context, userID, cardID string) (*models.Flashcard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if ownedBy(card, userID) {
		return card, nil
	}
	if card.UserID != "" {
		return nil, sql.ErrNoRows
	}

	if existing, err := s.store.GetCard(ctx, progressCardID(userID, cardID)); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	clone := userCopy(*card, userID)
	if err := s.store.CreateCard(ctx, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// AnswerCard records one answer: card counters and review schedule, then the
// user's stats (totals, activity, streak milestones).
func (s *Service) AnswerCard(ctx context.Context, userID, cardID string, correct bool) (*models.AnswerResponse, error) {
	card, err := s.studyCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if correct {
		card.CorrectCount++
	} else {
		card.IncorrectCount++
	}
	card.LastReviewed = &now
	next := NextReviewAt(card.CorrectCount, correct, now)
	card.NextReview = &next

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}

	earned, err := s.withStats(ctx, userID, func(st *models.UserStats) []models.Achievement {
		stats.AddAnswer(st, correct)
		return stats.RecordActivity(st, now)
	})
	if err != nil {
		// The card update stands; stats bookkeeping is logged and absorbed.
		log.Printf("[flashcards] failed to update stats for user %s: %v", userID, err)
		earned = []models.Achievement{}
	}

	return &models.AnswerResponse{Card: *card, NewAchievements: earned}, nil
}

// SetLearned toggles the learned flag and mirrors it into the clamped
// cards-learned counter.
func (s *Service) SetLearned(ctx context.Context, userID, cardID string, learned bool) (*models.Flashcard, error) {
	card, err := s.studyCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if card.Learned == learned {
		return card, nil
	}

	card.Learned = learned
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}

	if _, err := s.withStats(ctx, userID, func(st *models.UserStats) []models.Achievement {
		stats.SetLearned(st, learned)
		return nil
	}); err != nil {
		log.Printf("[flashcards] failed to update learned counter for user %s: %v", userID, err)
	}
	return card, nil
}

// ReportCard files a content report. Crossing the threshold pulls the card
// from the approved pool.
func (s *Service) ReportCard(ctx context.Context, cardID, reason string) (*models.Flashcard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	card.ReportCount++
	if reason != "" {
		card.ReportReasons = append(card.ReportReasons, reason)
	}
	if card.ReportCount >= ReportThreshold {
		card.IsApproved = false
	}

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// ── Catalog ─────────────────────────────────────────────

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListModules returns catalog modules with the user's completion state
// merged in. An empty userID (guest) gets the bare catalog.
func (s *Service) ListModules(ctx context.Context, userID, category string) ([]models.FlashcardModule, error) {
	modules, err := s.store.ListModules(ctx, category)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return modules, nil
	}

	prof, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return modules, nil
		}
		return nil, err
	}
	mergeCompletion(modules, prof.Stats)
	return modules, nil
}

// mergeCompletion flags the modules the given stats record has completed.
func mergeCompletion(modules []models.FlashcardModule, st models.UserStats) {
	for i := range modules {
		modules[i].Completed = st.HasCompleted(modules[i].ID)
	}
}

func (s *Service) GetModuleCards(ctx context.Context, moduleID string) (*models.FlashcardModule, []models.Flashcard, error) {
	module, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.store.ListCardsByIDs(ctx, module.FlashcardIDs)
	if err != nil {
		return nil, nil, err
	}
	return module, orderCards(module.FlashcardIDs, cards), nil
}

// orderCards restores the module's card order lost by the set-based query.
func orderCards(ids []string, cards []models.Flashcard) []models.Flashcard {
	byID := make(map[string]models.Flashcard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	ordered := make([]models.Flashcard, 0, len(cards))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// ── Sessions ────────────────────────────────────────────

func (s *Service) StartSession(ctx context.Context, userID, moduleID string) (*models.StudySession, error) {
	sess := &models.StudySession{
		ID:        uuid.NewString(),
		UserID:    userID,
		ModuleID:  moduleID,
		StartedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// FinishSession closes a session and folds its totals into the user's stats.
func (s *Service) FinishSession(ctx context.Context, userID, sessionID string, req models.FinishSessionRequest) ([]models.Achievement, error) {
	if req.CardsStudied < 0 || req.Correct < 0 || req.Incorrect < 0 {
		return nil, fmt.Errorf("session totals cannot be negative")
	}

	now := time.Now()
	if err := s.store.FinishSession(ctx, sessionID, userID, req.CardsStudied, req.Correct, req.Incorrect, now); err != nil {
		return nil, err
	}

	earned, err := s.withStats(ctx, userID, func(st *models.UserStats) []models.Achievement {
		st.TotalCorrect += req.Correct
		st.TotalIncorrect += req.Incorrect
		if req.CardsStudied > 0 {
			return stats.RecordActivity(st, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return earned, nil
}

func (s *Service) GetActivity(ctx context.Context, userID string, days int) ([]models.ActivityDay, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return s.store.AggregateActivity(ctx, userID, days)
}

// ── Exams ───────────────────────────────────────────────

func (s *Service) GetExam(ctx context.Context, moduleID string) (*models.ExamResponse, error) {
	module, cards, err := s.GetModuleCards(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if !module.HasExam {
		return nil, fmt.Errorf("module %s has no exam", moduleID)
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &models.ExamResponse{ModuleID: module.ID, Cards: cards}, nil
}

// SubmitExam grades an exam. Passing marks the module completed, which may
// emit the per-module achievement and the category-mastery achievement.
func (s *Service) SubmitExam(ctx context.Context, userID, moduleID string, req models.SubmitExamRequest) (*models.ExamResultResponse, error) {
	module, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if !module.HasExam {
		return nil, fmt.Errorf("module %s has no exam", moduleID)
	}
	if len(req.CardIDs) == 0 {
		return nil, fmt.Errorf("card_ids is required")
	}

	score := ExamScore(req.CardIDs, req.CorrectIDs)
	passed := score >= ExamPassThreshold

	result := &models.ExamResultResponse{
		Score:           score,
		Passed:          passed,
		NewAchievements: []models.Achievement{},
	}
	if !passed {
		return result, nil
	}

	earned, err := s.CompleteModule(ctx, userID, module)
	if err != nil {
		return nil, err
	}
	result.ModuleCompleted = true
	result.NewAchievements = earned
	return result, nil
}

// CompleteModule records module completion on the profile and emits the
// associated achievements.
func (s *Service) CompleteModule(ctx context.Context, userID string, module *models.FlashcardModule) ([]models.Achievement, error) {
	categoryModules, err := s.store.ListModules(ctx, module.Category)
	if err != nil {
		return nil, err
	}

	categoryName := module.Category
	if cat, err := s.store.GetCategory(ctx, module.Category); err == nil {
		categoryName = cat.Name
	}

	now := time.Now()
	return s.withStats(ctx, userID, func(st *models.UserStats) []models.Achievement {
		return stats.CompleteModule(st, *module, categoryModules, categoryName, now)
	})
}

// withStats loads the profile with achievements, applies fn, and persists the
// result plus any achievements fn emitted.
func (s *Service) withStats(ctx context.Context, userID string, fn func(*models.UserStats) []models.Achievement) ([]models.Achievement, error) {
	prof, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		prof, err = s.profiles.CreateProfile(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	achievements, err := s.profiles.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	prof.Stats.Achievements = achievements

	earned := fn(&prof.Stats)

	if err := s.profiles.SaveStats(ctx, userID, prof.Stats); err != nil {
		return nil, err
	}
	if len(earned) > 0 {
		if err := s.profiles.InsertAchievements(ctx, userID, earned); err != nil {
			return nil, err
		}
	}
	if earned == nil {
		earned = []models.Achievement{}
	}
	return earned, nil
}
