package models

// GenerateRequest asks the LLM for a batch of flashcards on a topic.
type GenerateRequest struct {
	Topic      string `json:"topic"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
	Context    string `json:"context,omitempty"`
	Language   string `json:"language,omitempty"`
	Save       bool   `json:"save"`
}

type GeneratedFlashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type GenerateResponse struct {
	Flashcards []GeneratedFlashcard `json:"flashcards"`
	Saved      bool                 `json:"saved"`
	Error      string               `json:"error,omitempty"`
}
