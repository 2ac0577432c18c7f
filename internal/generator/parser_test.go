package generator

import (
	"errors"
	"strings"
	"testing"
)

const validJSON = `{"flashcards":[
	{"question":"Vad är huvudstaden i Sverige?","answer":"Stockholm."},
	{"question":"Vad är huvudstaden i Norge?","answer":"Oslo."}
]}`

func TestParseResponseValid(t *testing.T) {
	deck, err := ParseResponse(validJSON, 2)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if len(deck.Flashcards) != 2 {
		t.Fatalf("got %d cards, want 2", len(deck.Flashcards))
	}
	if deck.Flashcards[0].Question != "Vad är huvudstaden i Sverige?" {
		t.Errorf("unexpected first question: %q", deck.Flashcards[0].Question)
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"json fence", "```json\n" + validJSON + "\n```"},
		{"plain fence", "```\n" + validJSON + "\n```"},
		{"fence with whitespace", "  ```json\n" + validJSON + "\n```  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := ParseResponse(tt.body, 2)
			if err != nil {
				t.Fatalf("ParseResponse failed: %v", err)
			}
			if len(deck.Flashcards) != 2 {
				t.Errorf("got %d cards, want 2", len(deck.Flashcards))
			}
		})
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, err := ParseResponse("not json at all", 2)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseResponseEmptyDeck(t *testing.T) {
	_, err := ParseResponse(`{"flashcards":[]}`, 2)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestParseResponseEmptyFields(t *testing.T) {
	body := `{"flashcards":[{"question":"","answer":"Stockholm."},{"question":"Q2","answer":"  "}]}`
	_, err := ParseResponse(body, 2)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(vErr.Errors) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(vErr.Errors), vErr.Errors)
	}
}

func TestParseResponseOverlongFields(t *testing.T) {
	long := strings.Repeat("x", 1200)
	body := `{"flashcards":[{"question":"Q","answer":"` + long + `"}]}`
	_, err := ParseResponse(body, 1)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestParseResponseCountMismatchTolerated(t *testing.T) {
	// Fewer cards than requested is a warning, not a failure.
	deck, err := ParseResponse(validJSON, 5)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if len(deck.Flashcards) != 2 {
		t.Errorf("got %d cards, want the 2 that were returned", len(deck.Flashcards))
	}
}

func TestMockClientOutputParses(t *testing.T) {
	deck, err := ParseResponse(buildMockJSON(5), 5)
	if err != nil {
		t.Fatalf("mock output must parse: %v", err)
	}
	if len(deck.Flashcards) != 5 {
		t.Errorf("got %d cards, want 5", len(deck.Flashcards))
	}
}
