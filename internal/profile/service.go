package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/6ogo/learny-backend/internal/stats"
	"golang.org/x/sync/errgroup"
)

// SyncTimeout bounds the whole profile fetch. Past the deadline the caller
// gets default profile fields instead of blocking on a slow database.
const SyncTimeout = 10 * time.Second

// SyncStore is the store surface the synchronizer needs.
type SyncStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error)
	SaveStats(ctx context.Context, userID string, st models.UserStats) error
	InsertAchievements(ctx context.Context, userID string, achievements []models.Achievement) error
	MarkAchievementDisplayed(ctx context.Context, userID, achievementID string) error
}

type Service struct {
	store   SyncStore
	timeout time.Duration
	now     func() time.Time
}

func NewService(store SyncStore) *Service {
	return &Service{store: store, timeout: SyncTimeout, now: time.Now}
}

// DefaultProfile is what consumers see when the remote fetch misses its
// deadline: free tier, not admin, zero usage.
func DefaultProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID: userID,
		Tier:   models.TierFree,
		Stats: models.UserStats{
			CompletedPrograms: []string{},
			Achievements:      []models.Achievement{},
		},
	}
}

// Sync fetches-or-creates the remote profile and the achievement list under
// one deadline, then runs the streak reconciler exactly once over the
// restored state and persists the result.
//
// The deadline cancels the losing branch through the derived context, so a
// slow query can never resolve later and overwrite the fallback: Sync
// returns exactly once, and the store calls share its context.
func (s *Service) Sync(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		prof         *models.UserProfile
		achievements []models.Achievement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			// Zero rows is the only condition that creates defaults.
			p, err = s.store.CreateProfile(gctx, userID)
		}
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		prof = p
		return nil
	})
	g.Go(func() error {
		a, err := s.store.ListAchievements(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch achievements: %w", err)
		}
		achievements = a
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			log.Printf("[profile] sync for user %s exceeded deadline, serving defaults", userID)
			return &models.ProfileResponse{
				Profile:      DefaultProfile(userID),
				Achievements: []models.Achievement{},
				Degraded:     true,
			}, nil
		}
		return nil, err
	}

	// Reconcile runs only now, after both fetches settled with real state.
	prof.Stats.Achievements = achievements
	earned := stats.Reconcile(&prof.Stats, s.now())

	if err := s.store.SaveStats(ctx, userID, prof.Stats); err != nil {
		log.Printf("[profile] failed to persist reconciled stats for user %s: %v", userID, err)
	}
	if len(earned) > 0 {
		if err := s.store.InsertAchievements(ctx, userID, earned); err != nil {
			log.Printf("[profile] failed to persist achievements for user %s: %v", userID, err)
		}
	}

	return &models.ProfileResponse{
		Profile:      *prof,
		Achievements: prof.Stats.Achievements,
	}, nil
}

// MarkDisplayed flips an achievement's displayed flag. Idempotent.
func (s *Service) MarkDisplayed(ctx context.Context, userID, achievementID string) error {
	return s.store.MarkAchievementDisplayed(ctx, userID, achievementID)
}

// AuditStreaks is the nightly job that zeroes streaks broken by inactivity,
// so users who never trigger a load don't keep a stale streak. lastActivity
// is left alone: only real activity moves it.
func AuditStreaks(ctx context.Context, store *Store) {
	profiles, err := store.ListActiveProfiles(ctx)
	if err != nil {
		log.Printf("[profile] streak audit: failed to list profiles: %v", err)
		return
	}

	today := stats.DayStart(time.Now())
	broken := 0
	for _, p := range profiles {
		if p.Stats.Streak == 0 {
			continue
		}
		last := stats.DayStart(time.UnixMilli(p.Stats.LastActivity))
		daysSince := int(time.UnixMilli(today).Sub(time.UnixMilli(last)).Hours() / 24)
		if daysSince > 1 {
			if err := store.UpdateStreak(ctx, p.UserID, 0, p.Stats.LastActivity); err != nil {
				log.Printf("[profile] streak audit: failed to reset user %s: %v", p.UserID, err)
				continue
			}
			broken++
		}
	}
	if broken > 0 {
		log.Printf("[profile] streak audit: reset %d broken streaks", broken)
	}
}
