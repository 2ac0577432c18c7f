package flashcards

import (
	"testing"

	"github.com/6ogo/learny-backend/internal/models"
)

func TestOwnedBy(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		caller string
		want   bool
	}{
		{"own card", "user-1", "user-1", true},
		{"someone else's card", "user-1", "user-2", false},
		{"catalog card", "", "user-1", false},
		{"anonymous caller", "user-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := &models.Flashcard{ID: "c1", UserID: tt.owner}
			if got := ownedBy(card, tt.caller); got != tt.want {
				t.Fatalf("ownedBy(owner=%q, caller=%q) = %v, want %v", tt.owner, tt.caller, got, tt.want)
			}
		})
	}
}

func TestUserCopy(t *testing.T) {
	catalog := models.Flashcard{
		ID:             "seed-sv-1",
		Question:       "Vad kallas ord som beskriver substantiv?",
		Answer:         "Adjektiv",
		Category:       "svenska",
		Difficulty:     models.DifficultyBeginner,
		CorrectCount:   12,
		IncorrectCount: 3,
		Learned:        true,
		IsApproved:     true,
	}

	clone := userCopy(catalog, "user-1")

	if clone.ID == catalog.ID {
		t.Fatal("clone must not reuse the catalog card id")
	}
	if clone.UserID != "user-1" {
		t.Fatalf("clone.UserID = %q, want %q", clone.UserID, "user-1")
	}
	if clone.Question != catalog.Question || clone.Answer != catalog.Answer || clone.Category != catalog.Category {
		t.Fatal("clone must keep the card content")
	}
	if clone.CorrectCount != 0 || clone.IncorrectCount != 0 || clone.Learned {
		t.Fatal("clone must start with fresh progress")
	}
}

func TestProgressCardIDStable(t *testing.T) {
	a := progressCardID("user-1", "seed-sv-1")
	if b := progressCardID("user-1", "seed-sv-1"); b != a {
		t.Fatalf("same user and card produced different ids: %q vs %q", a, b)
	}
	if b := progressCardID("user-2", "seed-sv-1"); b == a {
		t.Fatal("different users must get different progress ids")
	}
	if b := progressCardID("user-1", "seed-sv-2"); b == a {
		t.Fatal("different cards must get different progress ids")
	}
}

func TestMergeCompletion(t *testing.T) {
	modules := []models.FlashcardModule{
		{ID: "svenska-grund"},
		{ID: "engelska-glosor"},
		{ID: "matematik-algebra"},
	}
	st := models.UserStats{CompletedPrograms: []string{"svenska-grund", "matematik-algebra"}}

	mergeCompletion(modules, st)

	want := []bool{true, false, true}
	for i, m := range modules {
		if m.Completed != want[i] {
			t.Errorf("modules[%d].Completed = %v, want %v", i, m.Completed, want[i])
		}
	}
}
