package generator

import (
	"fmt"
	"strings"

	"github.com/6ogo/learny-backend/internal/models"
)

// Languages the prompt builder knows. Anything else falls back to Swedish,
// the product default.
const (
	LangSwedish = "sv"
	LangEnglish = "en"
)

func normalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LangEnglish, "english", "engelska":
		return LangEnglish
	default:
		return LangSwedish
	}
}

// SystemPrompt sets the generation contract: strict JSON, one language,
// study-quality card content.
func SystemPrompt(language string) string {
	lang := "Swedish"
	if normalizeLanguage(language) == LangEnglish {
		lang = "English"
	}

	return fmt.Sprintf(`You are a flashcard author for a study application. You write clear,
factually accurate flashcards in %s.

Rules:
- Each flashcard has one "question" and one "answer".
- Questions are self-contained: answerable without seeing other cards.
- Answers are concise — one to three sentences, no filler.
- Never repeat the question inside the answer.
- Cards must cover distinct facts; no near-duplicates.
- Difficulty must match the requested level: "beginner" cards test basic
  recall, "expert" cards test edge cases and synthesis.

Respond with ONLY a JSON object in exactly this shape, no prose and no
markdown fences:

{"flashcards":[{"question":"...","answer":"..."}]}`, lang)
}

// BuildUserPrompt renders the concrete generation request.
func BuildUserPrompt(req models.GenerateRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create exactly %d flashcards about: %s\n", req.Count, req.Topic)
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)

	if req.Context != "" {
		fmt.Fprintf(&b, "\nBase the cards on this source material:\n%s\n", req.Context)
	}

	fmt.Fprintf(&b, "\nReturn the JSON object with exactly %d flashcards.", req.Count)
	return b.String()
}
