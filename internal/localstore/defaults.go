package localstore

import "github.com/6ogo/learny-backend/internal/models"

// Compiled-in defaults. These seed the catalog on first boot and stand in for
// any key that is missing or corrupt.

func DefaultUserStats() models.UserStats {
	return models.UserStats{
		Streak:            0,
		LastActivity:      0,
		CompletedPrograms: []string{},
		Achievements:      []models.Achievement{},
	}
}

func DefaultCategories() []models.Category {
	return []models.Category{
		{ID: "svenska", Name: "Svenska"},
		{ID: "engelska", Name: "Engelska"},
		{ID: "matematik", Name: "Matematik"},
		{ID: "naturvetenskap", Name: "Naturvetenskap"},
		{ID: "historia", Name: "Historia"},
		{ID: "programmering", Name: "Programmering"},
	}
}

func DefaultPrograms() []models.FlashcardModule {
	return []models.FlashcardModule{
		{
			ID:           "svenska-grund",
			Name:         "Svenska grunder",
			Description:  "Grundläggande svenska ord och begrepp",
			Category:     "svenska",
			Difficulty:   models.DifficultyBeginner,
			FlashcardIDs: []string{"seed-sv-1", "seed-sv-2"},
			HasExam:      true,
		},
		{
			ID:           "engelska-glosor",
			Name:         "Engelska glosor",
			Description:  "Vanliga engelska glosor",
			Category:     "engelska",
			Difficulty:   models.DifficultyBeginner,
			FlashcardIDs: []string{"seed-en-1", "seed-en-2"},
			HasExam:      true,
		},
		{
			ID:           "matematik-algebra",
			Name:         "Algebra",
			Description:  "Algebraiska begrepp och regler",
			Category:     "matematik",
			Difficulty:   models.DifficultyIntermediate,
			FlashcardIDs: []string{"seed-ma-1"},
			HasExam:      false,
		},
	}
}

func DefaultFlashcards() []models.Flashcard {
	return []models.Flashcard{
		{
			ID:         "seed-sv-1",
			Question:   "Vad kallas ord som beskriver substantiv?",
			Answer:     "Adjektiv",
			Category:   "svenska",
			Difficulty: models.DifficultyBeginner,
			IsApproved: true,
		},
		{
			ID:         "seed-sv-2",
			Question:   "Vad är ett synonym till 'glad'?",
			Answer:     "Lycklig",
			Category:   "svenska",
			Difficulty: models.DifficultyBeginner,
			IsApproved: true,
		},
		{
			ID:         "seed-en-1",
			Question:   "Vad betyder 'library' på svenska?",
			Answer:     "Bibliotek",
			Category:   "engelska",
			Difficulty: models.DifficultyBeginner,
			IsApproved: true,
		},
		{
			ID:         "seed-en-2",
			Question:   "Vad betyder 'science' på svenska?",
			Answer:     "Vetenskap",
			Category:   "engelska",
			Difficulty: models.DifficultyBeginner,
			IsApproved: true,
		},
		{
			ID:         "seed-ma-1",
			Question:   "Vad är lösningen till 2x + 4 = 10?",
			Answer:     "x = 3",
			Category:   "matematik",
			Difficulty: models.DifficultyIntermediate,
			IsApproved: true,
		},
	}
}
