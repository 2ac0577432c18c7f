package generator

import (
	"strings"
	"testing"

	"github.com/6ogo/learny-backend/internal/models"
)

func TestSystemPromptLanguage(t *testing.T) {
	sv := SystemPrompt("sv")
	if !strings.Contains(sv, "Swedish") {
		t.Error("default system prompt should target Swedish")
	}

	en := SystemPrompt("en")
	if !strings.Contains(en, "English") {
		t.Error("en system prompt should target English")
	}

	// Unknown languages fall back to the product default
	unknown := SystemPrompt("klingon")
	if !strings.Contains(unknown, "Swedish") {
		t.Error("unknown language should fall back to Swedish")
	}
}

func TestSystemPromptDemandsBareJSON(t *testing.T) {
	p := SystemPrompt("sv")
	if !strings.Contains(p, `{"flashcards":[{"question":"...","answer":"..."}]}`) {
		t.Error("system prompt must pin the exact response shape")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	req := models.GenerateRequest{
		Topic:      "Andra världskriget",
		Category:   "historia",
		Difficulty: models.DifficultyIntermediate,
		Count:      8,
	}

	p := BuildUserPrompt(req)
	for _, want := range []string{"8", "Andra världskriget", "historia", "intermediate"} {
		if !strings.Contains(p, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "source material") {
		t.Error("context section should be omitted when empty")
	}
}

func TestBuildUserPromptWithContext(t *testing.T) {
	req := models.GenerateRequest{
		Topic:      "fotosyntes",
		Category:   "naturvetenskap",
		Difficulty: models.DifficultyBeginner,
		Count:      3,
		Context:    "Fotosyntesen omvandlar ljusenergi till kemisk energi.",
	}

	p := BuildUserPrompt(req)
	if !strings.Contains(p, "Fotosyntesen omvandlar") {
		t.Error("user prompt should include the provided context")
	}
}

func TestDailyLimit(t *testing.T) {
	tests := []struct {
		tier string
		want int
	}{
		{models.TierFree, 3},
		{models.TierPremium, 20},
		{models.TierSuper, -1},
		{"", 3},
		{"unknown", 3},
	}

	for _, tt := range tests {
		if got := DailyLimit(tt.tier); got != tt.want {
			t.Errorf("DailyLimit(%q) = %d, want %d", tt.tier, got, tt.want)
		}
	}
}
