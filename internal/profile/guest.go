package profile

import (
	"log"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/6ogo/learny-backend/internal/stats"
)

// LocalState is the guest-mode state surface: stats restored from the local
// file store, written back after reconciliation.
type LocalState interface {
	UserStats() models.UserStats
	SaveUserStats(st models.UserStats) error
}

// GuestSync is the profile flow for unauthenticated sessions. It restores
// stats from the local store (falling back to defaults on a corrupt or
// missing key), runs the streak reconciler exactly once, and persists the
// result. Guests always get free-tier profile fields.
func GuestSync(local LocalState, now time.Time) *models.ProfileResponse {
	st := local.UserStats()
	if st.Achievements == nil {
		st.Achievements = []models.Achievement{}
	}
	if st.CompletedPrograms == nil {
		st.CompletedPrograms = []string{}
	}
	stats.Reconcile(&st, now)

	if err := local.SaveUserStats(st); err != nil {
		log.Printf("[profile] failed to persist guest stats: %v", err)
	}

	prof := DefaultProfile("")
	prof.Stats = st
	return &models.ProfileResponse{
		Profile:      prof,
		Achievements: st.Achievements,
	}
}
