// Package recommend selects actionable recommendations for a journal entry.
package recommend

import (
	"context"
	"strings"

	"melify/pkg/domain"
	"melify/pkg/risk"
)

const (
	MinGenerated         = 3
	MaxGenerated         = 5
	DefaultEstimatedTime = 30
)

// Selector returns normalized drafts. Generative selectors return 3 to 5;
// catalog selectors may return none.
type Selector interface {
	Select(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood, moodRating int) []domain.RecommendationDraft
}

// Fallback returns the fixed recommendation list for mood.
func Fallback(mood domain.Mood) []domain.RecommendationDraft {
	base := []domain.RecommendationDraft{
		{
			Type:          domain.TypeMindfulness,
			Title:         "Take five slow breaths",
			Description:   "Breathe in for four counts, hold for four and breathe out for six. Repeat five times.",
			Priority:      domain.PriorityHigh,
			EstimatedTime: 5,
			Tags:          []string{"breathing", "calm"},
		},
		{
			Type:          domain.TypeActivity,
			Title:         "Go for a short walk",
			Description:   "A ten minute walk outside can lift your mood and clear your head.",
			Priority:      domain.PriorityMedium,
			EstimatedTime: 10,
			Tags:          []string{"movement", "outdoors"},
		},
		{
			Type:          domain.TypeSocial,
			Title:         "Reach out to a friend",
			Description:   "Send a message or call someone you trust and let them know how you are doing.",
			Priority:      domain.PriorityMedium,
			EstimatedTime: 15,
			Tags:          []string{"connection", "support"},
		},
	}
	if mood == domain.MoodSad || mood == domain.MoodAnxious {
		selfCompassion := domain.RecommendationDraft{
			Type:          domain.TypeMindfulness,
			Title:         "Practice self-compassion",
			Description:   "Write down what you would say to a close friend feeling this way, then read it to yourself.",
			Priority:      domain.PriorityHigh,
			EstimatedTime: 10,
			Tags:          []string{"self-compassion", "kindness"},
		}
		base = append([]domain.RecommendationDraft{selfCompassion}, base...)
	}
	for i := range base {
		base[i] = Normalize(base[i])
	}
	return base
}

// CrisisResource is the professional-help recommendation for flagged entries.
func CrisisResource() domain.RecommendationDraft {
	return Normalize(domain.RecommendationDraft{
		Type:          domain.TypeProfessional,
		Title:         "Reach out for immediate support",
		Description:   risk.CrisisMessage,
		Priority:      domain.PriorityHigh,
		EstimatedTime: 5,
		Tags:          []string{"crisis", "support", "safety"},
	})
}

// WithCrisisResource puts CrisisResource first when analysis has risk flags
// and keeps at most MaxGenerated drafts. Unflagged input is returned as is.
func WithCrisisResource(drafts []domain.RecommendationDraft, analysis domain.AnalysisResult) []domain.RecommendationDraft {
	if len(analysis.RiskFlags) == 0 {
		return drafts
	}
	crisis := CrisisResource()
	out := make([]domain.RecommendationDraft, 0, MaxGenerated)
	out = append(out, crisis)
	for _, d := range drafts {
		if len(out) >= MaxGenerated {
			break
		}
		if strings.EqualFold(d.Title, crisis.Title) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Normalize fills defaults and enforces field limits.
func Normalize(d domain.RecommendationDraft) domain.RecommendationDraft {
	if t, ok := domain.ParseRecommendationType(string(d.Type)); ok {
		d.Type = t
	} else {
		d.Type = domain.TypeGeneral
	}
	if p, ok := domain.ParsePriority(string(d.Priority)); ok {
		d.Priority = p
	} else {
		d.Priority = domain.PriorityMedium
	}
	if d.EstimatedTime <= 0 {
		d.EstimatedTime = DefaultEstimatedTime
	}
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	d.Tags = tags
	d.Title = domain.TruncateRunes(strings.TrimSpace(d.Title), domain.MaxTitleLength)
	d.Description = domain.TruncateRunes(strings.TrimSpace(d.Description), domain.MaxDescriptionLength)
	d.Actionable = true
	d.Category = domain.CategoryShortTerm
	return d
}
