package recommend

import (
	"context"
	"log/slog"

	"melify/pkg/domain"
)

const catalogLimit = 5

// CatalogFinder is the read side of the curated recommendation catalog.
type CatalogFinder interface {
	FindCatalogItems(ctx context.Context, themes []string, limit int) ([]domain.CatalogItem, error)
}

var moodThemes = map[domain.Mood][]string{
	domain.MoodHappy:     {"gratitude", "social", "creativity"},
	domain.MoodSad:       {"self-care", "social", "mindfulness"},
	domain.MoodAnxious:   {"mindfulness", "breathing", "grounding"},
	domain.MoodStressed:  {"mindfulness", "exercise", "breathing"},
	domain.MoodNeutral:   {"reflection", "exercise", "creativity"},
	domain.MoodEnergetic: {"exercise", "productivity", "social"},
	domain.MoodTired:     {"rest", "self-care", "sleep"},
	domain.MoodExcited:   {"creativity", "productivity", "social"},
}

var defaultThemes = []string{"mindfulness", "self-care"}

// ThemesFor returns the catalog themes that suit mood.
func ThemesFor(mood domain.Mood) []string {
	if themes, ok := moodThemes[mood]; ok {
		return themes
	}
	return defaultThemes
}

// CatalogSelector picks up to five active catalog items for the mood.
type CatalogSelector struct {
	finder CatalogFinder
	logger *slog.Logger
}

func NewCatalogSelector(finder CatalogFinder, logger *slog.Logger) *CatalogSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogSelector{finder: finder, logger: logger}
}

// Select returns an empty slice when the catalog has no match or cannot be read.
// Flagged entries always get the crisis resource, even from an empty catalog.
func (s *CatalogSelector) Select(ctx context.Context, _ string, analysis domain.AnalysisResult, mood domain.Mood, _ int) []domain.RecommendationDraft {
	items, err := s.finder.FindCatalogItems(ctx, ThemesFor(mood), catalogLimit)
	if err != nil {
		s.logger.Warn("catalog lookup failed", "error", err, "mood", mood)
		return WithCrisisResource([]domain.RecommendationDraft{}, analysis)
	}
	if len(items) > catalogLimit {
		items = items[:catalogLimit]
	}
	out := make([]domain.RecommendationDraft, 0, len(items))
	for _, it := range items {
		out = append(out, Normalize(domain.RecommendationDraft{
			Type:          it.Type,
			Title:         it.Title,
			Description:   it.Description,
			Priority:      it.Priority,
			EstimatedTime: it.EstimatedTime,
			Tags:          it.Tags,
		}))
	}
	return WithCrisisResource(out, analysis)
}
