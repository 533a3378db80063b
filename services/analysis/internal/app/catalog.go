package app

import (
	"context"
	"fmt"

	"melify/pkg/domain"
)

// DefaultCatalog is the curated recommendation set. IDs are stable so that
// seeding twice updates rows in place.
var DefaultCatalog = []domain.CatalogItem{
	{ID: "catalog-box-breathing", Theme: "breathing", Type: domain.TypeMindfulness, Title: "Box breathing", Description: "Inhale for four counts, hold for four, exhale for four, hold for four. Repeat for five rounds.", Priority: domain.PriorityHigh, EstimatedTime: 5, Tags: []string{"breathing", "calm"}},
	{ID: "catalog-body-scan", Theme: "mindfulness", Type: domain.TypeMindfulness, Title: "Ten minute body scan", Description: "Lie down and move your attention slowly from your toes to your head, noticing sensations without judging them.", Priority: domain.PriorityHigh, EstimatedTime: 10, Tags: []string{"mindfulness", "relaxation"}},
	{ID: "catalog-54321", Theme: "grounding", Type: domain.TypeMindfulness, Title: "5-4-3-2-1 grounding", Description: "Name five things you see, four you can touch, three you hear, two you smell and one you taste.", Priority: domain.PriorityHigh, EstimatedTime: 5, Tags: []string{"grounding", "anxiety"}},
	{ID: "catalog-gratitude-list", Theme: "gratitude", Type: domain.TypeActivity, Title: "Write three good things", Description: "List three things that went well today and what part you played in them.", Priority: domain.PriorityMedium, EstimatedTime: 10, Tags: []string{"gratitude", "journaling"}},
	{ID: "catalog-reach-out", Theme: "social", Type: domain.TypeSocial, Title: "Reach out to someone", Description: "Send a message or call a friend or family member you have not talked to this week.", Priority: domain.PriorityMedium, EstimatedTime: 15, Tags: []string{"connection", "support"}},
	{ID: "catalog-creative-sprint", Theme: "creativity", Type: domain.TypeActivity, Title: "Twenty minute creative sprint", Description: "Draw, write, cook or play music for twenty minutes with no goal beyond enjoying it.", Priority: domain.PriorityLow, EstimatedTime: 20, Tags: []string{"creativity", "play"}},
	{ID: "catalog-self-compassion", Theme: "self-care", Type: domain.TypeMindfulness, Title: "Self-compassion break", Description: "Acknowledge that this is hard, remind yourself that struggle is part of being human and offer yourself a kind word.", Priority: domain.PriorityHigh, EstimatedTime: 5, Tags: []string{"self-compassion", "self-care"}},
	{ID: "catalog-warm-routine", Theme: "self-care", Type: domain.TypeHealth, Title: "Small comfort routine", Description: "Make a warm drink, change into comfortable clothes and give yourself fifteen quiet minutes.", Priority: domain.PriorityMedium, EstimatedTime: 15, Tags: []string{"self-care", "comfort"}},
	{ID: "catalog-brisk-walk", Theme: "exercise", Type: domain.TypeHealth, Title: "Brisk walk outside", Description: "Take a fifteen minute walk at a pace that raises your heart rate a little.", Priority: domain.PriorityMedium, EstimatedTime: 15, Tags: []string{"exercise", "outdoors"}},
	{ID: "catalog-stretch", Theme: "exercise", Type: domain.TypeHealth, Title: "Desk stretch", Description: "Roll your shoulders, stretch your neck and hamstrings and stand tall for a minute.", Priority: domain.PriorityLow, EstimatedTime: 5, Tags: []string{"exercise", "movement"}},
	{ID: "catalog-weekly-review", Theme: "reflection", Type: domain.TypeActivity, Title: "Weekly reflection", Description: "Write down what drained you and what energized you this week, then pick one thing to change.", Priority: domain.PriorityMedium, EstimatedTime: 20, Tags: []string{"reflection", "journaling"}},
	{ID: "catalog-one-task", Theme: "productivity", Type: domain.TypeProfessional, Title: "Pick one meaningful task", Description: "Choose the single task that would make today feel productive and work on it for twenty-five focused minutes.", Priority: domain.PriorityMedium, EstimatedTime: 25, Tags: []string{"focus", "productivity"}},
	{ID: "catalog-power-nap", Theme: "rest", Type: domain.TypeHealth, Title: "Short rest", Description: "Lie down for a twenty minute rest without screens. Set an alarm so it stays short.", Priority: domain.PriorityMedium, EstimatedTime: 20, Tags: []string{"rest", "energy"}},
	{ID: "catalog-wind-down", Theme: "sleep", Type: domain.TypeHealth, Title: "Wind-down hour", Description: "Dim the lights and put screens away an hour before bed. Read or stretch instead.", Priority: domain.PriorityHigh, EstimatedTime: 60, Tags: []string{"sleep", "routine"}},
}

// SeedCatalog upserts DefaultCatalog and returns the number of items written.
func (a *App) SeedCatalog(ctx context.Context) (int, error) {
	items := make([]domain.CatalogItem, 0, len(DefaultCatalog))
	for _, it := range DefaultCatalog {
		it.IsActive = true
		it.Tags = append([]string(nil), it.Tags...)
		items = append(items, it)
	}
	if err := a.store.SaveCatalogItems(ctx, items); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	a.logger.Info("recommendation catalog seeded", "items", len(items))
	return len(items), nil
}
