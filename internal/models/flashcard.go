package models

import "time"

// ── Difficulty Levels ─────────────────────────────────────

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// ValidDifficulties lists the accepted card/module difficulty levels.
var ValidDifficulties = map[string]bool{
	DifficultyBeginner:     true,
	DifficultyIntermediate: true,
	DifficultyAdvanced:     true,
	DifficultyExpert:       true,
}

type Flashcard struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id,omitempty"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory,omitempty"`
	Difficulty     string     `json:"difficulty"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
	LastReviewed   *time.Time `json:"lastReviewed,omitempty"`
	NextReview     *time.Time `json:"nextReview,omitempty"`
	Learned        bool       `json:"learned"`
	ReviewLater    bool       `json:"reviewLater"`
	ReportCount    int        `json:"report_count"`
	ReportReasons  []string   `json:"report_reason"`
	IsApproved     bool       `json:"is_approved"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FlashcardModule is a catalog program: an ordered list of card ids grouped
// under a category, optionally with a final exam.
type FlashcardModule struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
	FlashcardIDs []string `json:"flashcards"`
	HasExam      bool     `json:"hasExam"`
	Completed    bool     `json:"completed"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudySession records one study run over a set of cards.
type StudySession struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ModuleID     string     `json:"module_id,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	CardsStudied int        `json:"cards_studied"`
	Correct      int        `json:"correct"`
	Incorrect    int        `json:"incorrect"`
}

// ── Request Types ─────────────────────────────────────────

type CreateFlashcardRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Difficulty  string `json:"difficulty"`
}

// UpdateFlashcardRequest is an explicit patch: only non-nil fields are applied.
type UpdateFlashcardRequest struct {
	Question    *string `json:"question,omitempty"`
	Answer      *string `json:"answer,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
	ReviewLater *bool   `json:"reviewLater,omitempty"`
}

type AnswerRequest struct {
	Correct bool `json:"correct"`
}

type LearnedRequest struct {
	Learned bool `json:"learned"`
}

type ReportRequest struct {
	Reason string `json:"reason"`
}

type FinishSessionRequest struct {
	CardsStudied int `json:"cards_studied"`
	Correct      int `json:"correct"`
	Incorrect    int `json:"incorrect"`
}

type SubmitExamRequest struct {
	CardIDs    []string `json:"card_ids"`
	CorrectIDs []string `json:"correct_ids"`
}

// ── Response Types ────────────────────────────────────────

type AnswerResponse struct {
	Card            Flashcard     `json:"card"`
	NewAchievements []Achievement `json:"new_achievements"`
}

type ExamResponse struct {
	ModuleID string      `json:"module_id"`
	Cards    []Flashcard `json:"cards"`
}

type ExamResultResponse struct {
	Score           float64       `json:"score"`
	Passed          bool          `json:"passed"`
	ModuleCompleted bool          `json:"module_completed"`
	NewAchievements []Achievement `json:"new_achievements"`
}
