package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/6ogo/learny-backend/internal/stats"
)

type fakeStore struct {
	profile      *models.UserProfile
	achievements []models.Achievement

	profileErr error
	delay      time.Duration

	created      bool
	savedStats   *models.UserStats
	inserted     []models.Achievement
	markedIDs    []string
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, sql.ErrNoRows
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeStore) CreateProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	f.created = true
	p := DefaultProfile(userID)
	return &p, nil
}

func (f *fakeStore) ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	if f.achievements == nil {
		return []models.Achievement{}, nil
	}
	return f.achievements, nil
}

func (f *fakeStore) SaveStats(ctx context.Context, userID string, st models.UserStats) error {
	f.savedStats = &st
	return nil
}

func (f *fakeStore) InsertAchievements(ctx context.Context, userID string, achievements []models.Achievement) error {
	f.inserted = append(f.inserted, achievements...)
	return nil
}

func (f *fakeStore) MarkAchievementDisplayed(ctx context.Context, userID, achievementID string) error {
	f.markedIDs = append(f.markedIDs, achievementID)
	return nil
}

func newTestService(store SyncStore, timeout time.Duration, now time.Time) *Service {
	return &Service{store: store, timeout: timeout, now: func() time.Time { return now }}
}

func TestSyncTimeoutDegradesToDefaults(t *testing.T) {
	store := &fakeStore{
		profile: &models.UserProfile{UserID: "u1", Tier: models.TierPremium, IsAdmin: true},
		delay:   time.Second,
	}
	svc := newTestService(store, 25*time.Millisecond, time.Now())

	resp, err := svc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatalf("deadline is not a hard error, got %v", err)
	}

	if !resp.Degraded {
		t.Error("expected degraded response")
	}
	if resp.Profile.Tier != models.TierFree {
		t.Errorf("tier = %q, want free default", resp.Profile.Tier)
	}
	if resp.Profile.IsAdmin {
		t.Error("isAdmin must be false on the fallback path")
	}
	if resp.Profile.DailyUsage != 0 {
		t.Errorf("daily usage = %d, want 0", resp.Profile.DailyUsage)
	}
	// The fallback must not be overwritten by the slow branch
	if store.savedStats != nil {
		t.Error("degraded sync must not persist state")
	}
}

func TestSyncCreatesProfileOnZeroRows(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, time.Second, time.Now())

	resp, err := svc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}

	if !store.created {
		t.Error("zero rows should create a default profile")
	}
	if resp.Profile.Tier != models.TierFree || resp.Profile.IsAdmin {
		t.Errorf("created profile = %+v, want free/non-admin defaults", resp.Profile)
	}
	if resp.Degraded {
		t.Error("successful create is not a degraded outcome")
	}
}

func TestSyncOtherErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{profileErr: boom}
	svc := newTestService(store, time.Second, time.Now())

	_, err := svc.Sync(context.Background(), "u1")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if store.created {
		t.Error("non-zero-rows errors must not create a profile")
	}
}

func TestSyncReconcilesOnceAfterLoad(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := stats.DayStart(now.AddDate(0, 0, -1))

	store := &fakeStore{
		profile: &models.UserProfile{
			UserID: "u1",
			Tier:   models.TierFree,
			Stats:  models.UserStats{Streak: 6, LastActivity: yesterday},
		},
	}
	svc := newTestService(store, time.Second, now)

	resp, err := svc.Sync(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}

	if resp.Profile.Stats.Streak != 7 {
		t.Errorf("streak = %d, want 7 after reconcile", resp.Profile.Stats.Streak)
	}
	if store.savedStats == nil || store.savedStats.Streak != 7 {
		t.Error("reconciled stats were not persisted")
	}
	if len(store.inserted) != 1 || store.inserted[0].Name != "7-dagars Streak" {
		t.Errorf("inserted achievements = %v, want exactly one 7-dagars Streak", store.inserted)
	}
}

func TestSyncRemoteAchievementsGateDedup(t *testing.T) {
	// The remote achievement list is loaded before reconciling, so a streak
	// milestone already on the server is not emitted again.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := stats.DayStart(now.AddDate(0, 0, -1))

	store := &fakeStore{
		profile: &models.UserProfile{
			UserID: "u1",
			Stats:  models.UserStats{Streak: 6, LastActivity: yesterday},
		},
		achievements: []models.Achievement{{ID: "a1", Name: "7-dagars Streak"}},
	}
	svc := newTestService(store, time.Second, now)

	if _, err := svc.Sync(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("duplicate milestone inserted: %v", store.inserted)
	}
}
