package domain

import (
	"testing"
	"time"
)

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo wörld", 5); got != "héllo" {
		t.Fatalf("unexpected %q", got)
	}
	if got := TruncateRunes("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := TruncateRunes("abc", 0); got != "" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPatchApplySetsAnalyzedFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := JournalEntry{ID: "j1", Mood: MoodSad, MoodRating: 2}
	patch := JournalAnalysisPatch{
		AIInsights:                 AIInsights{Sentiment: SentimentNegative, Keywords: []string{"sad"}},
		IsAIAnalyzed:               true,
		MentalHealthClassification: ClassificationHighRisk,
		RiskScore:                  1,
	}
	got := patch.Apply(j, now)
	if !got.IsAIAnalyzed || got.MentalHealthClassification == nil || *got.MentalHealthClassification != ClassificationHighRisk {
		t.Fatalf("unexpected classification %+v", got)
	}
	if got.RiskScore == nil || *got.RiskScore != 1 || !got.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected score/time %+v", got)
	}
	if j.IsAIAnalyzed || j.AIInsights != nil {
		t.Fatalf("apply mutated the input")
	}
}

func TestParseHelpers(t *testing.T) {
	if s, ok := ParseSentiment(" Negative "); !ok || s != SentimentNegative {
		t.Fatalf("unexpected sentiment %q %v", s, ok)
	}
	if _, ok := ParseSentiment("meh"); ok {
		t.Fatalf("expected invalid sentiment")
	}
	if p, ok := ParsePriority("HIGH"); !ok || p != PriorityHigh {
		t.Fatalf("unexpected priority %q", p)
	}
	if _, ok := ParseRecommendationType("hobby"); ok {
		t.Fatalf("expected invalid type")
	}
	if !MoodTired.Valid() || Mood("grumpy").Valid() {
		t.Fatalf("unexpected mood validity")
	}
}
