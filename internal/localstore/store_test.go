package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/6ogo/learny-backend/internal/models"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	st := s.UserStats()
	if st.Streak != 0 || st.LastActivity != 0 {
		t.Errorf("default stats = %+v, want zero values", st)
	}
	if len(s.Categories()) == 0 {
		t.Error("default categories are empty")
	}
	if len(s.Programs()) == 0 {
		t.Error("default programs are empty")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	st := models.UserStats{Streak: 9, LastActivity: 1700000000000, TotalCorrect: 12}
	if err := s.Save(KeyUserStats, st); err != nil {
		t.Fatal(err)
	}

	got := s.UserStats()
	if got.Streak != 9 || got.LastActivity != 1700000000000 || got.TotalCorrect != 12 {
		t.Errorf("round trip = %+v, want %+v", got, st)
	}
}

func TestCorruptKeyIsolation(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Valid flashcards, corrupt userStats
	cards := []models.Flashcard{{ID: "c1", Question: "Q", Answer: "A", Category: "svenska"}}
	if err := s.Save(KeyFlashcards, cards); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, KeyUserStats+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := s.Flashcards()
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("flashcards = %v, want the stored value", got)
	}

	st := s.UserStats()
	if st.Streak != 0 || st.LastActivity != 0 || len(st.Achievements) != 0 {
		t.Errorf("corrupt userStats should fall back to defaults, got %+v", st)
	}
}

func TestSaveOverwritesWholeValue(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(KeyUsage, UsageRecord{Date: "2025-03-10", Count: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(KeyUsage, UsageRecord{Date: "2025-03-11", Count: 1}); err != nil {
		t.Fatal(err)
	}

	u := s.Usage()
	if u.Date != "2025-03-11" || u.Count != 1 {
		t.Errorf("usage = %+v, want the last full write", u)
	}
}
