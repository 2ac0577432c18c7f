package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const profileColumns = `user_id, tier, is_admin, daily_usage, daily_usage_date,
	streak, last_activity, total_correct, total_incorrect, cards_learned,
	completed_programs, created_at, updated_at`

func scanProfile(row *sql.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	var completed pq.StringArray
	err := row.Scan(&p.UserID, &p.Tier, &p.IsAdmin, &p.DailyUsage, &p.DailyUsageDate,
		&p.Stats.Streak, &p.Stats.LastActivity, &p.Stats.TotalCorrect,
		&p.Stats.TotalIncorrect, &p.Stats.CardsLearned,
		&completed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Stats.CompletedPrograms = []string(completed)
	if p.Stats.CompletedPrograms == nil {
		p.Stats.CompletedPrograms = []string{}
	}
	return &p, nil
}

// GetProfile returns sql.ErrNoRows when no profile exists. That is the only
// condition under which the synchronizer creates one.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// CreateProfile inserts a default profile (free tier, not admin, zero usage)
// and returns it.
func (s *Store) CreateProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *Store) SaveStats(ctx context.Context, userID string, st models.UserStats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET
		    streak = $2, last_activity = $3,
		    total_correct = $4, total_incorrect = $5, cards_learned = $6,
		    completed_programs = $7, updated_at = NOW()
		 WHERE user_id = $1`,
		userID, st.Streak, st.LastActivity,
		st.TotalCorrect, st.TotalIncorrect, st.CardsLearned,
		pq.Array(st.CompletedPrograms))
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, icon, earned_at, displayed
		 FROM user_achievements WHERE user_id = $1 ORDER BY earned_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.Achievement{}
	for rows.Next() {
		var a models.Achievement
		var earnedAt time.Time
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &earnedAt, &a.Displayed); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.DateEarned = earnedAt.UTC().Format(time.RFC3339)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// InsertAchievements persists newly emitted achievements. The unique
// (user_id, name) constraint makes this a dedup no-op for repeats.
func (s *Store) InsertAchievements(ctx context.Context, userID string, achievements []models.Achievement) error {
	for _, a := range achievements {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO user_achievements (id, user_id, name, description, icon, displayed)
			 VALUES ($1, $2, $3, $4, $5, FALSE)
			 ON CONFLICT (user_id, name) DO NOTHING`,
			a.ID, userID, a.Name, a.Description, a.Icon)
		if err != nil {
			return fmt.Errorf("insert achievement %q: %w", a.Name, err)
		}
	}
	return nil
}

// MarkAchievementDisplayed is an idempotent flip to displayed = true.
func (s *Store) MarkAchievementDisplayed(ctx context.Context, userID, achievementID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_achievements SET displayed = TRUE
		 WHERE id = $1 AND user_id = $2`, achievementID, userID)
	return err
}

// IncrementDailyUsage atomically bumps the per-day generation counter,
// rolling it over when the stored day differs from today.
func (s *Store) IncrementDailyUsage(ctx context.Context, userID string, day string) (int, error) {
	var usage int
	err := s.db.QueryRowContext(ctx,
		`UPDATE user_profiles SET
		    daily_usage = CASE WHEN daily_usage_date = $2::date THEN daily_usage + 1 ELSE 1 END,
		    daily_usage_date = $2::date,
		    updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING daily_usage`,
		userID, day).Scan(&usage)
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return usage, nil
}

// RefundDailyUsage returns one unit of today's quota, for generations that
// were charged but failed.
func (s *Store) RefundDailyUsage(ctx context.Context, userID string, day string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET
		    daily_usage = GREATEST(daily_usage - 1, 0),
		    updated_at = NOW()
		 WHERE user_id = $1 AND daily_usage_date = $2::date`,
		userID, day)
	if err != nil {
		return fmt.Errorf("refund usage: %w", err)
	}
	return nil
}

// ResetStaleUsage zeroes usage counters left over from previous days.
func (s *Store) ResetStaleUsage(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET daily_usage = 0, daily_usage_date = CURRENT_DATE
		 WHERE daily_usage_date < CURRENT_DATE AND daily_usage > 0`)
	if err != nil {
		return 0, fmt.Errorf("reset usage: %w", err)
	}
	return res.RowsAffected()
}

// IsAdmin looks up the admin flag for route gating.
func (s *Store) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var admin bool
	err := s.db.QueryRowContext(ctx,
		`SELECT is_admin FROM user_profiles WHERE user_id = $1`, userID).Scan(&admin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return admin, err
}

// ListActiveProfiles returns profiles with a recorded activity, for the
// nightly streak audit.
func (s *Store) ListActiveProfiles(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, streak, last_activity FROM user_profiles WHERE last_activity > 0`)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.UserID, &p.Stats.Streak, &p.Stats.LastActivity); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateStreak writes just the streak fields, used by the audit job.
func (s *Store) UpdateStreak(ctx context.Context, userID string, streak int, lastActivity int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET streak = $2, last_activity = $3, updated_at = NOW()
		 WHERE user_id = $1`, userID, streak, lastActivity)
	return err
}
