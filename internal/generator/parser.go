package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/6ogo/learny-backend/internal/models"
)

type GeneratedDeck struct {
	Flashcards []models.GeneratedFlashcard `json:"flashcards"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse parses and validates the model output. expectedCount is the
// requested card count; a different count is logged but tolerated as long as
// at least one valid card came back.
func ParseResponse(responseBody string, expectedCount int) (*GeneratedDeck, error) {
	cleaned := stripCodeFences(responseBody)

	var deck GeneratedDeck
	if err := json.Unmarshal([]byte(cleaned), &deck); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateDeck(&deck, expectedCount); err != nil {
		return nil, err
	}

	return &deck, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateDeck(deck *GeneratedDeck, expectedCount int) error {
	var errs []string

	if len(deck.Flashcards) == 0 {
		return &ValidationError{Errors: []string{"no flashcards in response"}}
	}

	if expectedCount > 0 && len(deck.Flashcards) != expectedCount {
		log.Printf("WARNING: requested %d flashcards, got %d", expectedCount, len(deck.Flashcards))
	}

	seen := make(map[string]int)
	for i, card := range deck.Flashcards {
		num := i + 1

		question := strings.TrimSpace(card.Question)
		answer := strings.TrimSpace(card.Answer)

		if question == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty question", num))
		}
		if answer == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty answer", num))
		}
		if len(question) > 500 {
			errs = append(errs, fmt.Sprintf("card %d: question length %d exceeds 500", num, len(question)))
		}
		if len(answer) > 1000 {
			errs = append(errs, fmt.Sprintf("card %d: answer length %d exceeds 1000", num, len(answer)))
		}

		key := strings.ToLower(question)
		if prev, ok := seen[key]; ok && question != "" {
			log.Printf("WARNING: cards %d and %d have identical questions", prev, num)
		}
		seen[key] = num
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
