package stats

import (
	"time"

	"github.com/6ogo/learny-backend/internal/models"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// DayStart returns midnight UTC of t as epoch milliseconds.
func DayStart(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// Reconcile applies the daily streak transition for one load. It is a pure
// function of the stored stats and the clock, and must run only after real
// state has been restored, never on defaults.
//
// Transitions on Δ = whole days between the last-activity day and today:
//
//	Δ == 0  same day, idempotent (lastActivity normalized to today's midnight)
//	Δ == 1  consecutive day, streak += 1
//	Δ  > 1  gap, streak resets to 1
//
// lastActivity == 0 means "never active" and is a fixed point: only an
// explicit RecordActivity call starts a streak. Returns any achievements
// newly earned by crossing the 7- or 30-day streak thresholds.
func Reconcile(s *models.UserStats, now time.Time) []models.Achievement {
	if s.LastActivity <= 0 {
		return nil
	}

	today := DayStart(now)
	last := DayStart(time.UnixMilli(s.LastActivity))
	if last > today {
		// Malformed timestamp from the future. Treat as never active.
		return nil
	}

	delta := int((today - last) / dayMillis)

	switch {
	case delta == 0:
		s.LastActivity = today
		return nil
	case delta == 1:
		s.Streak++
		s.LastActivity = today
		return streakMilestones(s, now)
	default:
		s.Streak = 1
		s.LastActivity = today
		return nil
	}
}

// RecordActivity marks study activity for today. Unlike Reconcile it may
// start a streak from the never-active state.
func RecordActivity(s *models.UserStats, now time.Time) []models.Achievement {
	if s.LastActivity <= 0 {
		s.Streak = 1
		s.LastActivity = DayStart(now)
		return nil
	}
	return Reconcile(s, now)
}

func streakMilestones(s *models.UserStats, now time.Time) []models.Achievement {
	var def Def
	switch s.Streak {
	case 7:
		def = Streak7
	case 30:
		def = Streak30
	default:
		return nil
	}
	if a, ok := Emit(s, def, now); ok {
		return []models.Achievement{a}
	}
	return nil
}

// AddAnswer folds one answered card into the totals.
func AddAnswer(s *models.UserStats, correct bool) {
	if correct {
		s.TotalCorrect++
	} else {
		s.TotalIncorrect++
	}
}

// SetLearned adjusts the learned-card counter for a learn toggle.
// Decrements clamp at zero.
func SetLearned(s *models.UserStats, learned bool) {
	if learned {
		s.CardsLearned++
		return
	}
	s.CardsLearned--
	if s.CardsLearned < 0 {
		s.CardsLearned = 0
	}
}
