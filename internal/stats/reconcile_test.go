package stats

import (
	"testing"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
)

var noon = time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

func midnightMs(t time.Time) int64 {
	return DayStart(t)
}

func TestReconcileNeverActive(t *testing.T) {
	s := &models.UserStats{Streak: 0, LastActivity: 0}

	earned := Reconcile(s, noon)

	if earned != nil {
		t.Errorf("expected no achievements, got %v", earned)
	}
	if s.Streak != 0 || s.LastActivity != 0 {
		t.Errorf("never-active state must be a fixed point, got streak=%d lastActivity=%d", s.Streak, s.LastActivity)
	}
}

func TestReconcileSameDayIdempotent(t *testing.T) {
	s := &models.UserStats{Streak: 4, LastActivity: noon.Add(-2 * time.Hour).UnixMilli()}

	Reconcile(s, noon)
	if s.Streak != 4 {
		t.Errorf("same-day reconcile changed streak to %d, want 4", s.Streak)
	}
	if s.LastActivity != midnightMs(noon) {
		t.Errorf("lastActivity = %d, want today's midnight %d", s.LastActivity, midnightMs(noon))
	}

	// Running again must not change anything
	before := *s
	Reconcile(s, noon)
	if s.Streak != before.Streak || s.LastActivity != before.LastActivity {
		t.Errorf("second same-day reconcile mutated state: %+v → %+v", before, *s)
	}
}

func TestReconcileConsecutiveDay(t *testing.T) {
	yesterday := noon.AddDate(0, 0, -1)
	s := &models.UserStats{Streak: 3, LastActivity: yesterday.UnixMilli()}

	earned := Reconcile(s, noon)

	if s.Streak != 4 {
		t.Errorf("streak = %d, want 4", s.Streak)
	}
	if s.LastActivity != midnightMs(noon) {
		t.Errorf("lastActivity = %d, want %d", s.LastActivity, midnightMs(noon))
	}
	if len(earned) != 0 {
		t.Errorf("no milestone crossed, got %v", earned)
	}
}

func TestReconcileGapResets(t *testing.T) {
	tests := []struct {
		name       string
		priorStreak int
		gapDays    int
	}{
		{"two day gap", 5, 2},
		{"five day gap long streak", 42, 5},
		{"year gap", 365, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := noon.AddDate(0, 0, -tt.gapDays)
			s := &models.UserStats{Streak: tt.priorStreak, LastActivity: last.UnixMilli()}

			Reconcile(s, noon)

			if s.Streak != 1 {
				t.Errorf("streak = %d, want 1", s.Streak)
			}
			if s.LastActivity != midnightMs(noon) {
				t.Errorf("lastActivity = %d, want %d", s.LastActivity, midnightMs(noon))
			}
		})
	}
}

func TestReconcileSevenDayMilestone(t *testing.T) {
	yesterday := midnightMs(noon.AddDate(0, 0, -1))
	s := &models.UserStats{Streak: 6, LastActivity: yesterday}

	earned := Reconcile(s, noon)

	if s.Streak != 7 {
		t.Fatalf("streak = %d, want 7", s.Streak)
	}
	if len(earned) != 1 || earned[0].Name != "7-dagars Streak" {
		t.Fatalf("earned = %v, want exactly one %q", earned, "7-dagars Streak")
	}
	if earned[0].Displayed {
		t.Error("new achievement must start undisplayed")
	}

	// Re-running with the same resulting streak must not duplicate it
	earned = Reconcile(s, noon)
	if len(earned) != 0 {
		t.Errorf("same-day rerun emitted %v", earned)
	}
	count := 0
	for _, a := range s.Achievements {
		if a.Name == "7-dagars Streak" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("achievement stored %d times, want 1", count)
	}
}

func TestReconcileThirtyDayMilestone(t *testing.T) {
	yesterday := midnightMs(noon.AddDate(0, 0, -1))
	s := &models.UserStats{Streak: 29, LastActivity: yesterday}

	earned := Reconcile(s, noon)

	if s.Streak != 30 {
		t.Fatalf("streak = %d, want 30", s.Streak)
	}
	if len(earned) != 1 || earned[0].Name != "30-dagars Streak" {
		t.Fatalf("earned = %v, want exactly one %q", earned, "30-dagars Streak")
	}
}

func TestReconcileMilestoneAlreadyEarned(t *testing.T) {
	// A user who earned the 7-day achievement, lost the streak, and climbed
	// back to 7 does not get a second record.
	yesterday := midnightMs(noon.AddDate(0, 0, -1))
	s := &models.UserStats{
		Streak:       6,
		LastActivity: yesterday,
		Achievements: []models.Achievement{
			{ID: "a1", Name: "7-dagars Streak", Displayed: true},
		},
	}

	earned := Reconcile(s, noon)

	if s.Streak != 7 {
		t.Fatalf("streak = %d, want 7", s.Streak)
	}
	if len(earned) != 0 {
		t.Errorf("duplicate milestone emitted: %v", earned)
	}
	if len(s.Achievements) != 1 {
		t.Errorf("achievement count = %d, want 1", len(s.Achievements))
	}
}

func TestReconcileFutureTimestamp(t *testing.T) {
	s := &models.UserStats{Streak: 5, LastActivity: noon.AddDate(0, 0, 3).UnixMilli()}

	Reconcile(s, noon)

	if s.Streak != 5 {
		t.Errorf("malformed future timestamp changed streak to %d", s.Streak)
	}
}

func TestRecordActivityFirstEver(t *testing.T) {
	s := &models.UserStats{}

	RecordActivity(s, noon)

	if s.Streak != 1 {
		t.Errorf("streak = %d, want 1", s.Streak)
	}
	if s.LastActivity != midnightMs(noon) {
		t.Errorf("lastActivity = %d, want %d", s.LastActivity, midnightMs(noon))
	}
}

func TestRecordActivityDelegates(t *testing.T) {
	yesterday := midnightMs(noon.AddDate(0, 0, -1))
	s := &models.UserStats{Streak: 2, LastActivity: yesterday}

	RecordActivity(s, noon)

	if s.Streak != 3 {
		t.Errorf("streak = %d, want 3", s.Streak)
	}
}

func TestAddAnswer(t *testing.T) {
	s := &models.UserStats{}
	AddAnswer(s, true)
	AddAnswer(s, true)
	AddAnswer(s, false)

	if s.TotalCorrect != 2 || s.TotalIncorrect != 1 {
		t.Errorf("totals = %d/%d, want 2/1", s.TotalCorrect, s.TotalIncorrect)
	}
}

func TestSetLearnedClamp(t *testing.T) {
	s := &models.UserStats{}

	SetLearned(s, false)
	if s.CardsLearned != 0 {
		t.Errorf("cardsLearned = %d, want clamp at 0", s.CardsLearned)
	}

	SetLearned(s, true)
	SetLearned(s, true)
	if s.CardsLearned != 2 {
		t.Errorf("cardsLearned = %d, want 2", s.CardsLearned)
	}

	SetLearned(s, false)
	SetLearned(s, false)
	SetLearned(s, false)
	if s.CardsLearned != 0 {
		t.Errorf("cardsLearned = %d, want clamp at 0", s.CardsLearned)
	}
}
