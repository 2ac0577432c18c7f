// Package localstore is a file-backed JSON key-value store used for the seed
// catalog and guest-mode state. Each key is one file; a corrupt or missing
// key falls back to its compiled-in default without affecting the others.
package localstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/6ogo/learny-backend/internal/models"
)

const (
	KeyFlashcards = "flashcards"
	KeyPrograms   = "programs"
	KeyCategories = "categories"
	KeyUserStats  = "userStats"
	KeyUsage      = "learny_usage"
)

// UsageRecord tracks guest-mode daily generation usage.
type UsageRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// load reads one key into v. Returns false (leaving v untouched) on a missing
// file or corrupt JSON so the caller can substitute its default.
func (s *Store) load(key string, v interface{}) bool {
	path := filepath.Join(s.dir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[localstore] read %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[localstore] corrupt value under %q, using default: %v", key, err)
		return false
	}
	return true
}

// Save serializes the full value for key. Writes go through a temp file and
// rename so a crash never leaves a half-written key.
func (s *Store) Save(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	path := filepath.Join(s.dir, key+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s *Store) Flashcards() []models.Flashcard {
	var cards []models.Flashcard
	if !s.load(KeyFlashcards, &cards) {
		return DefaultFlashcards()
	}
	return cards
}

func (s *Store) Programs() []models.FlashcardModule {
	var mods []models.FlashcardModule
	if !s.load(KeyPrograms, &mods) {
		return DefaultPrograms()
	}
	return mods
}

func (s *Store) Categories() []models.Category {
	var cats []models.Category
	if !s.load(KeyCategories, &cats) {
		return DefaultCategories()
	}
	return cats
}

func (s *Store) UserStats() models.UserStats {
	var st models.UserStats
	if !s.load(KeyUserStats, &st) {
		return DefaultUserStats()
	}
	return st
}

func (s *Store) SaveUserStats(st models.UserStats) error {
	return s.Save(KeyUserStats, st)
}

func (s *Store) Usage() UsageRecord {
	var u UsageRecord
	if !s.load(KeyUsage, &u) {
		return UsageRecord{}
	}
	return u
}

func (s *Store) SaveUsage(u UsageRecord) error {
	return s.Save(KeyUsage, u)
}
