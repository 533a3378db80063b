// Package risk turns an analysis into a bounded triage score.
package risk

import (
	"math"
	"regexp"
	"strings"

	"melify/pkg/domain"
)

// Lexicon holds the terms that add keyword weight to a score.
var Lexicon = []string{
	"sad", "hopeless", "anxious", "stress", "tired", "alone",
	"fear", "harm", "suicide", "self-harm", "depressed", "lonely",
}

// lexiconPatterns match each term as a whole word, so "pharmacy" does not
// count as "harm". Hyphenated terms such as "self-harm" stay one term.
var lexiconPatterns = compileLexicon(Lexicon)

func compileLexicon(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		out[i] = regexp.MustCompile(`(?i)(^|[^\pL\pN-])` + regexp.QuoteMeta(term) + `($|[^\pL\pN-])`)
	}
	return out
}

const (
	baseScore        = 0.3
	negativeWeight   = 0.3
	keywordWeight    = 0.1
	maxKeywordWeight = 0.4

	HighRiskThreshold       = 0.75
	NeedsAttentionThreshold = 0.45
)

// Score combines sentiment, mood rating and risk keywords into [0, 1],
// rounded to two decimals. It is pure.
func Score(sentiment domain.Sentiment, moodRating int, keywords []string) float64 {
	score := baseScore
	if sentiment == domain.SentimentNegative {
		score += negativeWeight
	}
	score += math.Max(0, float64(7-moodRating)/10)
	score += math.Min(maxKeywordWeight, keywordWeight*float64(countMatches(keywords)))
	score = math.Min(1, math.Max(0, score))
	return math.Round(score*100) / 100
}

// Classify maps a score onto a triage bucket.
func Classify(score float64) domain.Classification {
	switch {
	case score >= HighRiskThreshold:
		return domain.ClassificationHighRisk
	case score >= NeedsAttentionThreshold:
		return domain.ClassificationNeedsAttention
	default:
		return domain.ClassificationSafe
	}
}

// Signals returns keywords plus any lexicon terms present in content,
// de-duplicated case-insensitively in first-seen order.
func Signals(content string, keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords)+len(Lexicon))
	out := make([]string, 0, len(keywords))
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, kw := range keywords {
		add(kw)
	}
	for i, re := range lexiconPatterns {
		if re.MatchString(content) {
			add(Lexicon[i])
		}
	}
	return out
}

func countMatches(keywords []string) int {
	n := 0
	for _, kw := range keywords {
		for _, re := range lexiconPatterns {
			if re.MatchString(kw) {
				n++
				break
			}
		}
	}
	return n
}
