package stats

import (
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/google/uuid"
)

// Def defines a single achievement. Name is the per-user dedup key.
type Def struct {
	Name        string
	Description string
	Icon        string
}

var (
	Streak7  = Def{Name: "7-dagars Streak", Description: "Du har studerat 7 dagar i rad", Icon: "flame"}
	Streak30 = Def{Name: "30-dagars Streak", Description: "Du har studerat 30 dagar i rad", Icon: "trophy"}
)

// ModuleCompleted is the per-program completion achievement.
func ModuleCompleted(moduleName string) Def {
	return Def{
		Name:        "Slutfört: " + moduleName,
		Description: "Du har slutfört programmet " + moduleName,
		Icon:        "medal",
	}
}

// CategoryMastered is earned when every program in a category is completed.
func CategoryMastered(categoryName string) Def {
	return Def{
		Name:        "Kategorimästare: " + categoryName,
		Description: "Du har slutfört alla program i kategorin " + categoryName,
		Icon:        "crown",
	}
}

// Emit appends a new achievement unless one with the same name already
// exists. Reports whether a record was created.
func Emit(s *models.UserStats, def Def, now time.Time) (models.Achievement, bool) {
	for _, a := range s.Achievements {
		if a.Name == def.Name {
			return models.Achievement{}, false
		}
	}
	a := models.Achievement{
		ID:          uuid.NewString(),
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		DateEarned:  now.UTC().Format(time.RFC3339),
		Displayed:   false,
	}
	s.Achievements = append(s.Achievements, a)
	return a, true
}

// MarkDisplayed flips the displayed flag. Idempotent; reports whether the
// achievement exists.
func MarkDisplayed(s *models.UserStats, id string) bool {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			s.Achievements[i].Displayed = true
			return true
		}
	}
	return false
}

// CompleteModule adds the module to the completed set and emits the
// completion achievement, then checks category mastery: if every module in
// the same category is now completed, the mastery achievement is emitted
// too. categoryModules must be all modules whose category matches the
// completed module's.
func CompleteModule(s *models.UserStats, module models.FlashcardModule, categoryModules []models.FlashcardModule, categoryName string, now time.Time) []models.Achievement {
	if !s.HasCompleted(module.ID) {
		s.CompletedPrograms = append(s.CompletedPrograms, module.ID)
	}

	var earned []models.Achievement
	if a, ok := Emit(s, ModuleCompleted(module.Name), now); ok {
		earned = append(earned, a)
	}

	mastered := len(categoryModules) > 0
	for _, m := range categoryModules {
		if !s.HasCompleted(m.ID) {
			mastered = false
			break
		}
	}
	if mastered {
		if a, ok := Emit(s, CategoryMastered(categoryName), now); ok {
			earned = append(earned, a)
		}
	}
	return earned
}
