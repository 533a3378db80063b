package quote

import (
	"context"
	"math/rand"
	"strings"

	"melify/pkg/domain"
)

// Entry is one curated quote.
type Entry struct {
	Quote       string
	Author      string
	Category    string
	Explanation string
}

// CorpusSelector picks a random curated quote whose category suits the mood.
type CorpusSelector struct {
	corpus []Entry
	intn   func(n int) int
}

// NewCorpusSelector uses DefaultCorpus when corpus is nil and math/rand when intn is nil.
func NewCorpusSelector(corpus []Entry, intn func(n int) int) *CorpusSelector {
	if corpus == nil {
		corpus = DefaultCorpus
	}
	if intn == nil {
		intn = rand.Intn
	}
	return &CorpusSelector{corpus: corpus, intn: intn}
}

func (s *CorpusSelector) Select(_ context.Context, _ string, _ domain.AnalysisResult, mood domain.Mood) domain.QuoteDraft {
	if len(s.corpus) == 0 {
		return Literal(mood)
	}
	candidates := s.matching(CategoriesFor(mood))
	if len(candidates) == 0 {
		candidates = s.corpus
	}
	e := candidates[s.intn(len(candidates))]

	reflections, ok := moodReflections[mood]
	if !ok {
		reflections = defaultReflections
	}
	explanation := strings.TrimSpace(e.Explanation + " " + reflections[s.intn(len(reflections))])

	return clamp(domain.QuoteDraft{
		Quote:           e.Quote,
		Explanation:     explanation,
		Author:          e.Author,
		Category:        e.Category,
		MoodContext:     string(mood),
		ActivityContext: ActivityJournalEntry,
	})
}

func (s *CorpusSelector) matching(categories []string) []Entry {
	var out []Entry
	for _, e := range s.corpus {
		cat := strings.ToLower(e.Category)
		for _, want := range categories {
			if strings.Contains(cat, strings.ToLower(want)) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
