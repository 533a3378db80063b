package risk

import (
	"strings"
	"testing"

	"melify/pkg/domain"
)

func TestScoreBounds(t *testing.T) {
	if got := Score(domain.SentimentNegative, 0, nil); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
	if got := Score(domain.SentimentPositive, 10, nil); got != 0.30 {
		t.Fatalf("expected 0.30, got %v", got)
	}
}

func TestScoreComponents(t *testing.T) {
	// 0.3 base + 0.2 rating + 0.2 for two lexicon hits.
	got := Score(domain.SentimentNeutral, 5, []string{"Feeling Tired", "lonely", "work"})
	if got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	// keyword contribution caps at 0.4.
	got = Score(domain.SentimentPositive, 7, []string{"sad", "anxious", "fear", "alone", "harm", "tired"})
	if got != 0.7 {
		t.Fatalf("expected capped 0.7, got %v", got)
	}
}

func TestScoreIsPureAndInRange(t *testing.T) {
	sentiments := []domain.Sentiment{domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral}
	kws := []string{"hopeless", "stress", "depressed", "self-harm", "suicide"}
	for _, s := range sentiments {
		for rating := 0; rating <= 10; rating++ {
			for n := 0; n <= len(kws); n++ {
				a := Score(s, rating, kws[:n])
				b := Score(s, rating, kws[:n])
				if a != b {
					t.Fatalf("score not deterministic for %s/%d/%d", s, rating, n)
				}
				if a < 0 || a > 1 {
					t.Fatalf("score %v out of range for %s/%d/%d", a, s, rating, n)
				}
			}
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Classification
	}{
		{1.0, domain.ClassificationHighRisk},
		{0.75, domain.ClassificationHighRisk},
		{0.749, domain.ClassificationNeedsAttention},
		{0.45, domain.ClassificationNeedsAttention},
		{0.449, domain.ClassificationSafe},
		{0, domain.ClassificationSafe},
	}
	for _, tc := range cases {
		if got := Classify(tc.score); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestSignalsDedupesCaseInsensitively(t *testing.T) {
	got := Signals("I feel so ALONE and tired today", []string{"Tired", "work", "work"})
	want := []string{"Tired", "work", "alone"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDetectCrisis(t *testing.T) {
	if flags := DetectCrisis("Sometimes I want to die."); len(flags) != 1 || flags[0] != FlagSelfHarm {
		t.Fatalf("expected self harm flag, got %v", flags)
	}
	if flags := DetectCrisis("I could hurt someone when I'm this angry"); len(flags) != 1 || flags[0] != FlagHarmOthers {
		t.Fatalf("expected harm to others flag, got %v", flags)
	}
	if flags := DetectCrisis("Had a calm walk by the river."); len(flags) != 0 {
		t.Fatalf("expected no flags, got %v", flags)
	}
}

func TestSignalsMatchWholeWords(t *testing.T) {
	cases := []string{
		"Picked up a prescription at the pharmacy, then watched a crusade documentary.",
		"My dad retired today and we were fearless on the roller coaster.",
	}
	for _, content := range cases {
		if got := Signals(content, nil); len(got) != 0 {
			t.Fatalf("expected no lexicon signals in %q, got %v", content, got)
		}
		score := Score(domain.SentimentNeutral, 6, Signals(content, []string{"pharmacy", "retired", "fearless"}))
		if score != 0.4 || Classify(score) != domain.ClassificationSafe {
			t.Fatalf("expected 0.40 safe for %q, got %v %s", content, score, Classify(score))
		}
	}
	got := Signals("Thinking about self-harm again, so tired.", nil)
	if strings.Join(got, ",") != "tired,self-harm" {
		t.Fatalf("unexpected signals %v", got)
	}
}
