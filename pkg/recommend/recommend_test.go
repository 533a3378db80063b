package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"melify/pkg/ai"
	"melify/pkg/domain"
	"melify/pkg/risk"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) GenerateText(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

func items(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"title":"Idea %d","description":"Do thing %d"}`, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func selectWith(gen ai.TextGenerator, mood domain.Mood) []domain.RecommendationDraft {
	return NewGenerativeSelector(gen, nil).Select(context.Background(), "entry", domain.AnalysisResult{}, mood, 5)
}

func TestFallbackLengths(t *testing.T) {
	if got := Fallback(domain.MoodSad); len(got) != 4 || got[0].Title != "Practice self-compassion" {
		t.Fatalf("expected self-compassion first for sad, got %+v", got)
	}
	if got := Fallback(domain.MoodAnxious); len(got) != 4 {
		t.Fatalf("expected 4 for anxious, got %d", len(got))
	}
	if got := Fallback(domain.MoodHappy); len(got) != 3 {
		t.Fatalf("expected 3 for happy, got %d", len(got))
	}
	for _, d := range Fallback(domain.MoodSad) {
		if !d.Actionable || d.Category != domain.CategoryShortTerm || d.AIGenerated {
			t.Fatalf("fallback not normalized: %+v", d)
		}
	}
}

func TestGenerativeSelectorFallsBackOnFailure(t *testing.T) {
	cases := []stubGenerator{
		{err: &ai.TransportError{Provider: "test", Err: errors.New("quota")}},
		{reply: "[]"},
		{reply: `{"title":"not an array"}`},
		{reply: `[{"description":"no title"}]`},
		{reply: "sorry, I cannot help"},
	}
	for i, gen := range cases {
		got := selectWith(gen, domain.MoodAnxious)
		if len(got) != 4 || got[0].AIGenerated {
			t.Fatalf("case %d: expected anxious fallback, got %+v", i, got)
		}
	}
}

func TestGenerativeSelectorLengthContract(t *testing.T) {
	for n := 1; n <= 8; n++ {
		got := selectWith(stubGenerator{reply: items(n)}, domain.MoodHappy)
		if len(got) < MinGenerated || len(got) > MaxGenerated {
			t.Fatalf("n=%d: got %d drafts", n, len(got))
		}
		if !got[0].AIGenerated || got[0].Title != "Idea 0" {
			t.Fatalf("n=%d: expected generated draft first, got %+v", n, got[0])
		}
	}
}

func TestGenerativeSelectorNormalizesDrafts(t *testing.T) {
	reply := `[
		{"type":"Health","title":"Drink water","description":"Have a glass now","priority":"urgent","estimatedTime":"5 minutes","tags":["hydration"]},
		{"title":"` + strings.Repeat("t", 300) + `","description":"d","estimatedTime":0},
		{"type":"hobby","title":"Read","description":"A chapter","priority":"LOW","estimatedTime":20}
	]`
	got := selectWith(stubGenerator{reply: reply}, domain.MoodNeutral)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].Type != domain.TypeHealth || got[0].Priority != domain.PriorityMedium || got[0].EstimatedTime != 5 {
		t.Fatalf("unexpected first draft %+v", got[0])
	}
	if len([]rune(got[1].Title)) != domain.MaxTitleLength || got[1].EstimatedTime != DefaultEstimatedTime || got[1].Tags == nil {
		t.Fatalf("unexpected second draft %+v", got[1])
	}
	if got[2].Type != domain.TypeGeneral || got[2].Priority != domain.PriorityLow {
		t.Fatalf("unexpected third draft %+v", got[2])
	}
	for _, d := range got {
		if !d.Actionable || d.Category != domain.CategoryShortTerm {
			t.Fatalf("expected actionable short_term, got %+v", d)
		}
	}
}

type stubFinder struct {
	items  []domain.CatalogItem
	err    error
	themes []string
}

func (f *stubFinder) FindCatalogItems(_ context.Context, themes []string, limit int) ([]domain.CatalogItem, error) {
	f.themes = themes
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func TestCatalogSelector(t *testing.T) {
	finder := &stubFinder{}
	for i := 0; i < 7; i++ {
		finder.items = append(finder.items, domain.CatalogItem{ID: fmt.Sprint(i), Theme: "mindfulness", Type: domain.TypeMindfulness, Title: fmt.Sprintf("Item %d", i), IsActive: true})
	}
	got := NewCatalogSelector(finder, nil).Select(context.Background(), "", domain.AnalysisResult{}, domain.MoodAnxious, 3)
	if len(got) != 5 {
		t.Fatalf("expected 5 catalog drafts, got %d", len(got))
	}
	if strings.Join(finder.themes, ",") != "mindfulness,breathing,grounding" {
		t.Fatalf("unexpected themes %v", finder.themes)
	}
	if got[0].AIGenerated || got[0].EstimatedTime != DefaultEstimatedTime {
		t.Fatalf("unexpected draft %+v", got[0])
	}
}

func TestCatalogSelectorEmptyAndError(t *testing.T) {
	got := NewCatalogSelector(&stubFinder{}, nil).Select(context.Background(), "", domain.AnalysisResult{}, domain.MoodHappy, 8)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
	got = NewCatalogSelector(&stubFinder{err: errors.New("db down")}, nil).Select(context.Background(), "", domain.AnalysisResult{}, domain.MoodHappy, 8)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice on error, got %v", got)
	}
	if themes := ThemesFor(domain.Mood("unknown")); strings.Join(themes, ",") != "mindfulness,self-care" {
		t.Fatalf("unexpected default themes %v", themes)
	}
}

func TestCrisisResourceLeadsFlaggedEntries(t *testing.T) {
	flagged := domain.AnalysisResult{RiskFlags: []string{risk.FlagSelfHarm}}
	ctx := context.Background()
	selections := map[string][]domain.RecommendationDraft{
		"fallback":   NewGenerativeSelector(stubGenerator{err: errors.New("down")}, nil).Select(ctx, "I want to die", flagged, domain.MoodSad, 1),
		"generated":  NewGenerativeSelector(stubGenerator{reply: items(5)}, nil).Select(ctx, "I want to die", flagged, domain.MoodSad, 1),
		"catalog":    NewCatalogSelector(&stubFinder{}, nil).Select(ctx, "I want to die", flagged, domain.MoodSad, 1),
		"no catalog": NewCatalogSelector(&stubFinder{err: errors.New("db down")}, nil).Select(ctx, "I want to die", flagged, domain.MoodSad, 1),
	}
	for name, got := range selections {
		if len(got) == 0 || len(got) > MaxGenerated {
			t.Fatalf("%s: unexpected length %d", name, len(got))
		}
		first := got[0]
		if first.Type != domain.TypeProfessional || first.Priority != domain.PriorityHigh || !strings.Contains(first.Description, "988") {
			t.Fatalf("%s: expected crisis resource first, got %+v", name, first)
		}
	}
	if got := selections["generated"]; len(got) != MaxGenerated || got[1].Title != "Idea 0" {
		t.Fatalf("expected crisis resource plus four generated drafts, got %+v", got)
	}
	if got := selections["fallback"]; len(got) != 5 {
		t.Fatalf("expected crisis resource plus sad fallback, got %d", len(got))
	}
}

func TestWithCrisisResourceLeavesUnflaggedAlone(t *testing.T) {
	drafts := Fallback(domain.MoodHappy)
	got := WithCrisisResource(drafts, domain.AnalysisResult{})
	if len(got) != len(drafts) || got[0].Title != drafts[0].Title {
		t.Fatalf("unflagged drafts changed: %+v", got)
	}
	twice := WithCrisisResource(WithCrisisResource(drafts, domain.AnalysisResult{RiskFlags: []string{"x"}}), domain.AnalysisResult{RiskFlags: []string{"x"}})
	if len(twice) != len(drafts)+1 {
		t.Fatalf("crisis resource duplicated: %+v", twice)
	}
}
