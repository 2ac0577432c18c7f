package generator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/6ogo/learny-backend/internal/flashcards"
	"github.com/6ogo/learny-backend/internal/localstore"
	"github.com/6ogo/learny-backend/internal/models"
)

// Per-tier daily generation limits. -1 means unlimited.
func DailyLimit(tier string) int {
	switch tier {
	case models.TierPremium:
		return 20
	case models.TierSuper:
		return -1
	default:
		return 3
	}
}

const (
	defaultCount = 5
	maxCount     = 20
)

// ErrLimitReached is returned when the caller's daily generation quota is
// exhausted.
var ErrLimitReached = errors.New("daily generation limit reached")

// profileStore is the quota and tier surface the service needs.
type profileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	IncrementDailyUsage(ctx context.Context, userID string, day string) (int, error)
	RefundDailyUsage(ctx context.Context, userID string, day string) error
}

// guestUsage is the local usage record backing the anonymous quota.
type guestUsage interface {
	Usage() localstore.UsageRecord
	SaveUsage(u localstore.UsageRecord) error
}

type Service struct {
	gen      *Generator
	profiles profileStore
	cards    *flashcards.Service
	local    guestUsage
}

func NewService(gen *Generator, profiles profileStore, cards *flashcards.Service, local guestUsage) *Service {
	return &Service{gen: gen, profiles: profiles, cards: cards, local: local}
}

// Generate produces flashcards for the request, enforcing the caller's
// per-tier daily quota, and optionally saves the cards to the caller's
// collection. An empty userID is a guest: free-tier quota tracked in the
// local store, no saving.
func (s *Service) Generate(ctx context.Context, userID string, req models.GenerateRequest) (*models.GenerateResponse, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.Count <= 0 {
		req.Count = defaultCount
	}
	if req.Count > maxCount {
		req.Count = maxCount
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyBeginner
	}
	if !models.ValidDifficulties[req.Difficulty] {
		return nil, fmt.Errorf("invalid difficulty %q", req.Difficulty)
	}

	if userID == "" {
		return s.generateGuest(ctx, req)
	}

	prof, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		prof, err = s.profiles.CreateProfile(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// The quota is charged up front with an atomic increment and refunded
	// when generation fails, so a failed call does not consume a unit.
	charged := ""
	if limit := DailyLimit(prof.Tier); limit >= 0 {
		today := time.Now().UTC().Format("2006-01-02")
		usage, err := s.profiles.IncrementDailyUsage(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		if usage > limit {
			s.refund(ctx, userID, today)
			return nil, ErrLimitReached
		}
		charged = today
	}

	deck, llmResp, err := s.gen.GenerateDeck(ctx, req)
	if err != nil {
		if charged != "" {
			s.refund(ctx, userID, charged)
		}
		return nil, err
	}
	if llmResp != nil {
		log.Printf("[generator] user %s generated %d cards (%d prompt / %d output tokens)",
			userID, len(deck.Flashcards), llmResp.PromptTokens, llmResp.OutputTokens)
	}

	resp := &models.GenerateResponse{Flashcards: deck.Flashcards}

	if req.Save {
		if err := s.saveDeck(ctx, userID, req, deck); err != nil {
			// Generation succeeded; report the save failure without
			// discarding the cards.
			log.Printf("[generator] failed to save deck for user %s: %v", userID, err)
			resp.Error = "generated cards could not be saved"
			return resp, nil
		}
		resp.Saved = true
	}

	return resp, nil
}

func (s *Service) refund(ctx context.Context, userID, day string) {
	if err := s.profiles.RefundDailyUsage(ctx, userID, day); err != nil {
		log.Printf("[generator] failed to refund usage for user %s: %v", userID, err)
	}
}

// generateGuest runs the anonymous flow: free-tier quota against the local
// usage record, charged only after a successful generation.
func (s *Service) generateGuest(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	today := time.Now().UTC().Format("2006-01-02")
	usage := s.local.Usage()
	if usage.Date != today {
		usage = localstore.UsageRecord{Date: today}
	}
	if usage.Count >= DailyLimit(models.TierFree) {
		return nil, ErrLimitReached
	}

	deck, llmResp, err := s.gen.GenerateDeck(ctx, req)
	if err != nil {
		return nil, err
	}
	if llmResp != nil {
		log.Printf("[generator] guest generated %d cards (%d prompt / %d output tokens)",
			len(deck.Flashcards), llmResp.PromptTokens, llmResp.OutputTokens)
	}

	usage.Count++
	if err := s.local.SaveUsage(usage); err != nil {
		log.Printf("[generator] failed to persist guest usage: %v", err)
	}

	resp := &models.GenerateResponse{Flashcards: deck.Flashcards}
	if req.Save {
		resp.Error = "sign in to save generated cards"
	}
	return resp, nil
}

func (s *Service) saveDeck(ctx context.Context, userID string, req models.GenerateRequest, deck *GeneratedDeck) error {
	for _, gc := range deck.Flashcards {
		card := models.CreateFlashcardRequest{
			Question:   gc.Question,
			Answer:     gc.Answer,
			Category:   req.Category,
			Difficulty: req.Difficulty,
		}
		if card.Category == "" {
			card.Category = "ai"
		}
		if _, err := s.cards.CreateCard(ctx, userID, card); err != nil {
			return err
		}
	}
	return nil
}
