package store

import (
	"context"
	"testing"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

func TestAIConfigFindByFanpage(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))
	ctx := context.Background()

	cfg := models.AIConfig{Name: "page config", ApplicableFanpages: `["111", "222"]`}
	if err := s.Create(ctx, &cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindByFanpage(ctx, "111")
	if err != nil {
		t.Fatalf("FindByFanpage: %v", err)
	}
	if got == nil || got.ID != cfg.ID {
		t.Errorf("FindByFanpage = %+v", got)
	}

	missing, err := s.FindByFanpage(ctx, "333")
	if err != nil || missing != nil {
		t.Errorf("unlisted page should be (nil, nil), got %+v, %v", missing, err)
	}
}

func TestAIConfigFindByScenario(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))
	ctx := context.Background()

	cfg := models.AIConfig{Name: "scenario config", ApplicableScenarios: `["g1"]`}
	if err := s.Create(ctx, &cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindByScenario(ctx, "g1")
	if err != nil {
		t.Fatalf("FindByScenario: %v", err)
	}
	if got == nil || got.ID != cfg.ID {
		t.Errorf("FindByScenario = %+v", got)
	}
}

func TestAIConfigSetDefaultKeepsSingleDefault(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))
	ctx := context.Background()

	a := models.AIConfig{Name: "a"}
	b := models.AIConfig{Name: "b"}
	if err := s.Create(ctx, &a); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if err := s.Create(ctx, &b); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	if err := s.SetDefault(ctx, a.ID); err != nil {
		t.Fatalf("SetDefault a: %v", err)
	}
	if err := s.SetDefault(ctx, b.ID); err != nil {
		t.Fatalf("SetDefault b: %v", err)
	}

	def, err := s.FindDefault(ctx)
	if err != nil {
		t.Fatalf("FindDefault: %v", err)
	}
	if def == nil || def.ID != b.ID {
		t.Errorf("default = %+v, want config b", def)
	}

	cfgs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	defaults := 0
	for _, cfg := range cfgs {
		if cfg.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want exactly 1", defaults)
	}
}

func TestAIConfigSetDefaultUnknownID(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))

	if err := s.SetDefault(context.Background(), 999); err == nil {
		t.Fatal("SetDefault on a missing config must fail")
	}
}

func TestAIConfigRecordUsage(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))
	ctx := context.Background()

	cfg := models.AIConfig{Name: "usage"}
	if err := s.Create(ctx, &cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.RecordUsage(ctx, cfg.ID, 100, true); err != nil {
		t.Fatalf("RecordUsage success: %v", err)
	}
	if err := s.RecordUsage(ctx, cfg.ID, 40, false); err != nil {
		t.Fatalf("RecordUsage failure: %v", err)
	}

	got, err := s.ByID(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.TotalRequests != 2 || got.TotalTokensUsed != 140 {
		t.Errorf("totals = %d requests, %d tokens", got.TotalRequests, got.TotalTokensUsed)
	}
	if got.SuccessfulResponses != 1 || got.FailedResponses != 1 {
		t.Errorf("outcomes = %d ok, %d failed", got.SuccessfulResponses, got.FailedResponses)
	}
	if got.LastUsedAt == nil {
		t.Error("LastUsedAt should be stamped")
	}
}

func TestAIConfigFindDefaultNone(t *testing.T) {
	s := NewAIConfigStore(newTestDB(t))

	def, err := s.FindDefault(context.Background())
	if err != nil || def != nil {
		t.Errorf("no default should be (nil, nil), got %+v, %v", def, err)
	}
}
