package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/6ogo/learny-backend/internal/localstore"
	"github.com/6ogo/learny-backend/internal/models"
)

type failingLLM struct{}

func (failingLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	return nil, errors.New("upstream unavailable")
}

func mockGenerator() *Generator {
	return &Generator{llm: NewMockClient(), model: "mock"}
}

type fakeProfiles struct {
	tier       string
	usage      int
	increments int
	refunds    int
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return &models.UserProfile{UserID: userID, Tier: f.tier}, nil
}

func (f *fakeProfiles) CreateProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return &models.UserProfile{UserID: userID, Tier: models.TierFree}, nil
}

func (f *fakeProfiles) IncrementDailyUsage(ctx context.Context, userID string, day string) (int, error) {
	f.increments++
	f.usage++
	return f.usage, nil
}

func (f *fakeProfiles) RefundDailyUsage(ctx context.Context, userID string, day string) error {
	f.refunds++
	f.usage--
	return nil
}

type fakeUsage struct {
	record localstore.UsageRecord
	saves  int
}

func (f *fakeUsage) Usage() localstore.UsageRecord { return f.record }

func (f *fakeUsage) SaveUsage(u localstore.UsageRecord) error {
	f.record = u
	f.saves++
	return nil
}

func TestGenerateFailureRefundsQuota(t *testing.T) {
	profiles := &fakeProfiles{tier: models.TierFree}
	svc := NewService(&Generator{llm: failingLLM{}, model: "mock"}, profiles, nil, &fakeUsage{})

	_, err := svc.Generate(context.Background(), "user-1", models.GenerateRequest{Topic: "fotosyntes"})
	if err == nil {
		t.Fatal("expected generation error")
	}
	if profiles.increments != 1 || profiles.refunds != 1 {
		t.Fatalf("increments = %d refunds = %d, want 1 and 1", profiles.increments, profiles.refunds)
	}
	if profiles.usage != 0 {
		t.Fatalf("usage = %d after failed generation, want 0", profiles.usage)
	}
}

func TestGenerateSuccessKeepsCharge(t *testing.T) {
	profiles := &fakeProfiles{tier: models.TierFree}
	svc := NewService(mockGenerator(), profiles, nil, &fakeUsage{})

	resp, err := svc.Generate(context.Background(), "user-1", models.GenerateRequest{Topic: "fotosyntes"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Flashcards) == 0 {
		t.Fatal("no flashcards returned")
	}
	if profiles.usage != 1 || profiles.refunds != 0 {
		t.Fatalf("usage = %d refunds = %d, want 1 and 0", profiles.usage, profiles.refunds)
	}
}

func TestGenerateOverLimit(t *testing.T) {
	profiles := &fakeProfiles{tier: models.TierFree, usage: DailyLimit(models.TierFree)}
	svc := NewService(mockGenerator(), profiles, nil, &fakeUsage{})

	_, err := svc.Generate(context.Background(), "user-1", models.GenerateRequest{Topic: "fotosyntes"})
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("err = %v, want ErrLimitReached", err)
	}
	if profiles.usage != DailyLimit(models.TierFree) {
		t.Fatalf("usage = %d, want it restored to the limit", profiles.usage)
	}
}

func TestGenerateGuestQuota(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	local := &fakeUsage{}
	svc := NewService(mockGenerator(), &fakeProfiles{}, nil, local)

	resp, err := svc.Generate(context.Background(), "", models.GenerateRequest{Topic: "fotosyntes"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Flashcards) == 0 {
		t.Fatal("no flashcards returned")
	}
	if local.record.Date != today || local.record.Count != 1 {
		t.Fatalf("guest usage = %+v, want count 1 for %s", local.record, today)
	}
}

func TestGenerateGuestAtLimit(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	local := &fakeUsage{record: localstore.UsageRecord{Date: today, Count: DailyLimit(models.TierFree)}}
	svc := NewService(mockGenerator(), &fakeProfiles{}, nil, local)

	_, err := svc.Generate(context.Background(), "", models.GenerateRequest{Topic: "fotosyntes"})
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("err = %v, want ErrLimitReached", err)
	}
	if local.saves != 0 {
		t.Fatal("rejected guest request must not write usage")
	}
}

func TestGenerateGuestFailureNotCharged(t *testing.T) {
	local := &fakeUsage{}
	svc := NewService(&Generator{llm: failingLLM{}, model: "mock"}, &fakeProfiles{}, nil, local)

	_, err := svc.Generate(context.Background(), "", models.GenerateRequest{Topic: "fotosyntes"})
	if err == nil {
		t.Fatal("expected generation error")
	}
	if local.saves != 0 {
		t.Fatal("failed guest generation must not consume quota")
	}
}

func TestGenerateGuestStaleDateRollsOver(t *testing.T) {
	local := &fakeUsage{record: localstore.UsageRecord{Date: "2026-01-01", Count: DailyLimit(models.TierFree)}}
	svc := NewService(mockGenerator(), &fakeProfiles{}, nil, local)

	_, err := svc.Generate(context.Background(), "", models.GenerateRequest{Topic: "fotosyntes"})
	if err != nil {
		t.Fatalf("Generate after rollover: %v", err)
	}
	if local.record.Count != 1 {
		t.Fatalf("guest usage count = %d, want 1 after rollover", local.record.Count)
	}
}
