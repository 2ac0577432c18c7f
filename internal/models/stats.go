package models

import "time"

// ── Subscription Tiers ────────────────────────────────────

const (
	TierFree    = "free"
	TierPremium = "premium"
	TierSuper   = "super"
)

// UserStats is the per-user study bookkeeping record. LastActivity is epoch
// milliseconds, 0 meaning "never active". Reconciliation must not fabricate a
// streak from that state.
type UserStats struct {
	Streak            int           `json:"streak"`
	LastActivity      int64         `json:"lastActivity"`
	TotalCorrect      int           `json:"totalCorrect"`
	TotalIncorrect    int           `json:"totalIncorrect"`
	CardsLearned      int           `json:"cardsLearned"`
	CompletedPrograms []string      `json:"completedPrograms"`
	Achievements      []Achievement `json:"achievements"`
}

// HasCompleted reports whether a module id is in the completed set.
func (s *UserStats) HasCompleted(moduleID string) bool {
	for _, id := range s.CompletedPrograms {
		if id == moduleID {
			return true
		}
	}
	return false
}

// Achievement is an append-only record. Name is the dedup key per user.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	DateEarned  string `json:"dateEarned"`
	Displayed   bool   `json:"displayed"`
}

// UserProfile is the remote profile row for an authenticated user.
type UserProfile struct {
	UserID         string    `json:"user_id"`
	Tier           string    `json:"tier"`
	IsAdmin        bool      `json:"is_admin"`
	DailyUsage     int       `json:"daily_usage"`
	DailyUsageDate time.Time `json:"daily_usage_date"`
	Stats          UserStats `json:"stats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ── Request/Response Types ────────────────────────────────

type ProfileResponse struct {
	Profile      UserProfile   `json:"profile"`
	Achievements []Achievement `json:"achievements"`
	Degraded     bool          `json:"degraded"`
}

type MarkDisplayedRequest struct {
	AchievementID string `json:"achievement_id"`
}
