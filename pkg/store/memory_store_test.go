package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"melify/pkg/domain"
)

func TestMemoryStoreJournalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	created := time.Now().Add(-time.Hour)
	if err := s.SaveJournal(ctx, domain.JournalEntry{ID: "j1", UserID: "u1", Content: "hi", Mood: domain.MoodHappy, MoodRating: 8, CreatedAt: created}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := s.GetJournal(ctx, "j1", "someone-else"); ok {
		t.Fatalf("journal must be scoped to its owner")
	}

	pending, err := s.ListUnanalyzedJournals(ctx, time.Now(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending journal, got %v err=%v", pending, err)
	}

	patch := domain.JournalAnalysisPatch{
		AIInsights:                 domain.AIInsights{Sentiment: domain.SentimentPositive, Keywords: []string{"a"}},
		IsAIAnalyzed:               true,
		MentalHealthClassification: domain.ClassificationSafe,
		RiskScore:                  0.3,
	}
	if err := s.UpdateJournalAnalysis(ctx, "j1", patch); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok, err := s.GetJournal(ctx, "j1", "u1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !got.IsAIAnalyzed || *got.RiskScore != 0.3 || *got.MentalHealthClassification != domain.ClassificationSafe {
		t.Fatalf("unexpected journal %+v", got)
	}
	got.AIInsights.Keywords[0] = "mutated"
	again, _, _ := s.GetJournal(ctx, "j1", "u1")
	if again.AIInsights.Keywords[0] != "a" {
		t.Fatalf("store returned shared slice")
	}

	pending, _ = s.ListUnanalyzedJournals(ctx, time.Now(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected no pending journals, got %d", len(pending))
	}
	if err := s.UpdateJournalAnalysis(ctx, "missing", patch); !errors.Is(err, ErrJournalNotFound) {
		t.Fatalf("expected ErrJournalNotFound, got %v", err)
	}
}

func TestMemoryStoreCatalogOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.SaveCatalogItems(ctx, []domain.CatalogItem{
		{ID: "1", Theme: "mindfulness", Title: "B low", Priority: domain.PriorityLow, IsActive: true},
		{ID: "2", Theme: "Mindfulness", Title: "A high", Priority: domain.PriorityHigh, IsActive: true},
		{ID: "3", Theme: "mindfulness", Title: "C inactive", Priority: domain.PriorityHigh, IsActive: false},
		{ID: "4", Theme: "exercise", Title: "D other theme", Priority: domain.PriorityHigh, IsActive: true},
		{ID: "5", Theme: "breathing", Title: "E medium", Priority: domain.PriorityMedium, IsActive: true},
	})
	got, err := s.FindCatalogItems(ctx, []string{"mindfulness", "breathing"}, 5)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 3 || got[0].ID != "2" || got[1].ID != "5" || got[2].ID != "1" {
		t.Fatalf("unexpected catalog order %+v", got)
	}
	got, _ = s.FindCatalogItems(ctx, []string{"mindfulness", "breathing"}, 2)
	if len(got) != 2 {
		t.Fatalf("expected limit applied, got %d", len(got))
	}
}

func TestRecommendationModelKeepsEmptyTags(t *testing.T) {
	m := recommendationToModel(domain.Recommendation{ID: "r1", Title: "Walk", Context: domain.RecommendationContext{Mood: domain.MoodSad, RiskScore: 0.8}})
	if string(m.Tags) != "[]" {
		t.Fatalf("expected empty json array, got %s", m.Tags)
	}
	back := recommendationFromModel(m)
	if back.Tags == nil || back.Context.Mood != domain.MoodSad || back.Context.RiskScore != 0.8 {
		t.Fatalf("unexpected recommendation %+v", back)
	}
}

func TestJournalModelNullAnalysis(t *testing.T) {
	j := journalFromModel(journalToModel(domain.JournalEntry{ID: "j1", UserID: "u1", Mood: domain.MoodTired}))
	if j.AIInsights != nil || j.MentalHealthClassification != nil || j.RiskScore != nil {
		t.Fatalf("expected unanalyzed fields to stay nil: %+v", j)
	}
}

func TestMemoryStoreUsesPatchTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.SaveJournal(ctx, domain.JournalEntry{ID: "j1", UserID: "u1", Content: "hi", Mood: domain.MoodHappy, MoodRating: 8}); err != nil {
		t.Fatalf("save: %v", err)
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.UpdateJournalAnalysis(ctx, "j1", domain.JournalAnalysisPatch{IsAIAnalyzed: true, UpdatedAt: at}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _, _ := s.GetJournal(ctx, "j1", "u1")
	if !got.UpdatedAt.Equal(at) {
		t.Fatalf("expected updatedAt %v, got %v", at, got.UpdatedAt)
	}
}
