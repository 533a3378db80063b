// Package quote picks or generates a motivational quote for a journal entry.
package quote

import (
	"context"
	"strings"

	"melify/pkg/domain"
)

const ActivityJournalEntry = "journal_entry"

// Selector always returns a usable quote.
type Selector interface {
	Select(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood) domain.QuoteDraft
}

// Literal is the quote of last resort.
func Literal(mood domain.Mood) domain.QuoteDraft {
	return domain.QuoteDraft{
		Quote:           "The only way out is through.",
		Explanation:     "Hard feelings ease when we move through them one small step at a time.",
		Author:          "Robert Frost",
		Category:        "resilience",
		MoodContext:     string(mood),
		ActivityContext: ActivityJournalEntry,
	}
}

var moodCategories = map[domain.Mood][]string{
	domain.MoodHappy:     {"gratitude", "positivity", "joy"},
	domain.MoodSad:       {"motivation", "positivity", "gratitude", "resilience"},
	domain.MoodAnxious:   {"mindfulness", "peace", "calm"},
	domain.MoodStressed:  {"calm", "mindfulness", "balance"},
	domain.MoodNeutral:   {"wisdom", "growth", "motivation"},
	domain.MoodEnergetic: {"motivation", "action", "success"},
	domain.MoodTired:     {"rest", "self-care", "peace"},
	domain.MoodExcited:   {"joy", "success", "action"},
}

var defaultCategories = []string{"motivation", "positivity"}

// CategoriesFor returns the quote categories that suit mood.
func CategoriesFor(mood domain.Mood) []string {
	if cats, ok := moodCategories[mood]; ok {
		return cats
	}
	return defaultCategories
}

func clamp(d domain.QuoteDraft) domain.QuoteDraft {
	d.Quote = domain.TruncateRunes(strings.TrimSpace(d.Quote), domain.MaxQuoteLength)
	d.Explanation = domain.TruncateRunes(strings.TrimSpace(d.Explanation), domain.MaxExplanationLength)
	d.Author = strings.TrimSpace(d.Author)
	d.Category = strings.TrimSpace(d.Category)
	return d
}
