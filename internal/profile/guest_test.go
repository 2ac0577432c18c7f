package profile

import (
	"errors"
	"testing"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/6ogo/learny-backend/internal/stats"
)

type fakeLocal struct {
	stats   models.UserStats
	saved   *models.UserStats
	saveErr error
}

func (f *fakeLocal) UserStats() models.UserStats { return f.stats }

func (f *fakeLocal) SaveUserStats(st models.UserStats) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = &st
	return nil
}

func TestGuestSyncFirstVisit(t *testing.T) {
	local := &fakeLocal{stats: models.UserStats{
		CompletedPrograms: []string{},
		Achievements:      []models.Achievement{},
	}}

	resp := GuestSync(local, time.Now())

	if resp.Profile.Tier != models.TierFree || resp.Profile.IsAdmin {
		t.Fatalf("guest profile = tier %q admin %v, want free non-admin", resp.Profile.Tier, resp.Profile.IsAdmin)
	}
	if resp.Profile.Stats.Streak != 0 || resp.Profile.Stats.LastActivity != 0 {
		t.Fatal("never-active guest stats must stay untouched")
	}
	if local.saved == nil {
		t.Fatal("guest stats were not persisted")
	}
}

func TestGuestSyncReconciles(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	local := &fakeLocal{stats: models.UserStats{
		Streak:            6,
		LastActivity:      stats.DayStart(now.AddDate(0, 0, -1)),
		CompletedPrograms: []string{},
		Achievements:      []models.Achievement{},
	}}

	resp := GuestSync(local, now)

	if resp.Profile.Stats.Streak != 7 {
		t.Fatalf("streak = %d, want 7", resp.Profile.Stats.Streak)
	}
	found := false
	for _, a := range resp.Achievements {
		if a.Name == "7-dagars Streak" {
			found = true
		}
	}
	if !found {
		t.Fatal("7-day achievement missing from guest response")
	}
	if local.saved == nil || local.saved.Streak != 7 {
		t.Fatal("reconciled guest stats were not persisted")
	}
}

func TestGuestSyncSaveFailureAbsorbed(t *testing.T) {
	local := &fakeLocal{
		stats:   models.UserStats{Streak: 2, LastActivity: stats.DayStart(time.Now())},
		saveErr: errors.New("disk full"),
	}

	resp := GuestSync(local, time.Now())

	if resp.Profile.Stats.Streak != 2 {
		t.Fatalf("streak = %d, want 2", resp.Profile.Stats.Streak)
	}
}
