package quote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"melify/pkg/ai"
	"melify/pkg/domain"
	"melify/pkg/llmjson"
)

const maxPromptContent = 300

type reply struct {
	Quote       string `json:"quote" jsonschema:"required"`
	Explanation string `json:"explanation"`
	Author      string `json:"author"`
	Category    string `json:"category"`
}

var replySchema = llmjson.MustSchemaFor[reply]()

// GenerativeSelector asks the generator for a personalized quote and falls back to Literal.
type GenerativeSelector struct {
	gen    ai.TextGenerator
	logger *slog.Logger
}

func NewGenerativeSelector(gen ai.TextGenerator, logger *slog.Logger) *GenerativeSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerativeSelector{gen: gen, logger: logger}
}

func (s *GenerativeSelector) Select(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood) domain.QuoteDraft {
	draft, err := s.generate(ctx, content, analysis, mood)
	if err != nil {
		s.logger.Warn("quote generation fell back", "error", err, "mood", mood)
		return Literal(mood)
	}
	return draft
}

func (s *GenerativeSelector) generate(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood) (domain.QuoteDraft, error) {
	if s.gen == nil {
		return domain.QuoteDraft{}, &ai.TransportError{Provider: "quote", Err: fmt.Errorf("no generator configured")}
	}
	system := "You write short, warm, motivational quotes for someone who just wrote in their journal. " +
		"Reply with a single JSON object matching this JSON Schema and nothing else:\n" + replySchema
	user := fmt.Sprintf(`Write a 1-2 sentence quote personalized to this entry.
Mood: %s
Sentiment: %s
Keywords: %s

Journal entry:
%s`, mood, analysis.Sentiment, strings.Join(analysis.Keywords, ", "), domain.TruncateRunes(content, maxPromptContent))

	raw, err := s.gen.GenerateText(ctx, system, user)
	if err != nil {
		return domain.QuoteDraft{}, err
	}
	parsed, err := llmjson.DecodeObject[reply](raw)
	if err != nil {
		return domain.QuoteDraft{}, err
	}
	if strings.TrimSpace(parsed.Quote) == "" {
		return domain.QuoteDraft{}, &llmjson.ParseError{Reason: "missing quote"}
	}
	author := parsed.Author
	if strings.TrimSpace(author) == "" {
		author = "Melify"
	}
	category := parsed.Category
	if strings.TrimSpace(category) == "" {
		category = CategoriesFor(mood)[0]
	}
	return clamp(domain.QuoteDraft{
		Quote:           parsed.Quote,
		Explanation:     parsed.Explanation,
		Author:          author,
		Category:        category,
		IsAIGenerated:   true,
		MoodContext:     string(mood),
		ActivityContext: ActivityJournalEntry,
	}), nil
}
