// Package analysis derives sentiment, keywords and a risk score from journal text.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"melify/pkg/ai"
	"melify/pkg/domain"
	"melify/pkg/llmjson"
	"melify/pkg/risk"
)

const (
	minKeywords = 3
	maxKeywords = 5
)

var fallbackRecommendations = []string{
	"Take a few minutes to notice how you are feeling right now.",
	"Try a short breathing exercise or a gentle walk.",
	"Reach out to someone you trust and share how your day went.",
}

// Analyzer runs the extraction and enhancement calls against a TextGenerator.
type Analyzer struct {
	gen    ai.TextGenerator
	logger *slog.Logger
}

func NewAnalyzer(gen ai.TextGenerator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{gen: gen, logger: logger}
}

// Analyze never fails. Generator and parse failures degrade to a
// deterministic result derived from mood and moodRating.
func (a *Analyzer) Analyze(ctx context.Context, content string, mood domain.Mood, moodRating int) domain.AnalysisResult {
	base, err := a.extract(ctx, content)
	if err != nil {
		a.logger.Warn("sentiment extraction fell back", "error", err, "mood", mood)
		base = Fallback(mood, moodRating)
	}

	overlay, err := a.enhance(ctx, base, mood, moodRating)
	if err != nil {
		a.logger.Warn("sentiment enhancement skipped", "error", err, "mood", mood)
	} else {
		base = MergeKeepingPresent(base, overlay)
	}

	base.Keywords = normalizeKeywords(base.Keywords, mood)
	if strings.TrimSpace(base.MoodInsights) == "" {
		base.MoodInsights = fmt.Sprintf("Current mood: %s (%d/10)", mood, moodRating)
	}
	base.RiskScore = risk.Score(base.Sentiment, moodRating, risk.Signals(content, base.Keywords))
	base.RiskFlags = risk.DetectCrisis(content)
	if len(base.RiskFlags) > 0 {
		a.logger.Warn("crisis language detected", "flags", base.RiskFlags)
		base.Recommendations = withCrisisMessage(base.Recommendations)
	}
	return base
}

func (a *Analyzer) extract(ctx context.Context, content string) (domain.AnalysisResult, error) {
	raw, err := a.generate(ctx, buildExtractionPrompt(content))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	parsed, err := llmjson.DecodeObject[Reply](raw)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	sentiment, ok := domain.ParseSentiment(parsed.Sentiment)
	if !ok {
		return domain.AnalysisResult{}, &llmjson.ParseError{Reason: fmt.Sprintf("invalid sentiment %q", parsed.Sentiment)}
	}
	keywords := cleanKeywords(parsed.Keywords)
	if len(keywords) == 0 {
		return domain.AnalysisResult{}, &llmjson.ParseError{Reason: "no keywords"}
	}
	result := domain.AnalysisResult{
		Sentiment:       sentiment,
		Keywords:        keywords,
		Recommendations: cleanKeywords(parsed.Recommendations),
		Summary:         strings.TrimSpace(parsed.Summary),
		MoodInsights:    strings.TrimSpace(parsed.MoodInsights),
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = append([]string(nil), fallbackRecommendations...)
	}
	if result.Summary == "" {
		result.Summary = "Journal entry reflecting on personal experiences."
	}
	return result, nil
}

func (a *Analyzer) enhance(ctx context.Context, base domain.AnalysisResult, mood domain.Mood, moodRating int) (Reply, error) {
	raw, err := a.generate(ctx, buildEnhancementPrompt(base, mood, moodRating))
	if err != nil {
		return Reply{}, err
	}
	return llmjson.DecodeObject[Reply](raw)
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	if a.gen == nil {
		return "", &ai.TransportError{Provider: "analysis", Err: fmt.Errorf("no generator configured")}
	}
	return a.gen.GenerateText(ctx, buildSystemPrompt(), prompt)
}

// Fallback is the deterministic analysis used when the generator is unusable.
func Fallback(mood domain.Mood, moodRating int) domain.AnalysisResult {
	sentiment := domain.SentimentNeutral
	switch {
	case moodRating >= 7:
		sentiment = domain.SentimentPositive
	case moodRating <= 4:
		sentiment = domain.SentimentNegative
	}
	return domain.AnalysisResult{
		Sentiment:       sentiment,
		Keywords:        fallbackKeywords(mood),
		Recommendations: append([]string(nil), fallbackRecommendations...),
		Summary:         fmt.Sprintf("A journal entry written while feeling %s, rated %d out of 10.", mood, moodRating),
	}
}

// MergeKeepingPresent overrides base fields with the non-empty, valid fields of overlay.
func MergeKeepingPresent(base domain.AnalysisResult, overlay Reply) domain.AnalysisResult {
	if s, ok := domain.ParseSentiment(overlay.Sentiment); ok {
		base.Sentiment = s
	}
	if kws := cleanKeywords(overlay.Keywords); len(kws) > 0 {
		base.Keywords = kws
	}
	if recs := cleanKeywords(overlay.Recommendations); len(recs) > 0 {
		base.Recommendations = recs
	}
	if s := strings.TrimSpace(overlay.Summary); s != "" {
		base.Summary = s
	}
	if s := strings.TrimSpace(overlay.MoodInsights); s != "" {
		base.MoodInsights = s
	}
	return base
}

func fallbackKeywords(mood domain.Mood) []string {
	m := strings.TrimSpace(string(mood))
	if m == "" {
		return []string{"reflection", "experience", "journal"}
	}
	return []string{m, "reflection", "experience"}
}

// cleanKeywords trims entries and drops blanks and case-insensitive duplicates.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeKeywords(in []string, mood domain.Mood) []string {
	out := cleanKeywords(in)
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	pad := append(fallbackKeywords(mood), "journal")
	for _, p := range pad {
		if len(out) >= minKeywords {
			break
		}
		out = cleanKeywords(append(out, p))
	}
	return out
}

func withCrisisMessage(recs []string) []string {
	out := make([]string, 0, len(recs)+1)
	out = append(out, risk.CrisisMessage)
	for _, r := range recs {
		if r != risk.CrisisMessage {
			out = append(out, r)
		}
	}
	return out
}
