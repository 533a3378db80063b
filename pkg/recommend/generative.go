package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"melify/pkg/ai"
	"melify/pkg/domain"
	"melify/pkg/llmjson"
)

const maxPromptContent = 500

// minutes accepts a JSON number or numeric string.
type minutes int

func (m *minutes) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*m = minutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "minutes"))
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*m = minutes(v)
	}
	return nil
}

type item struct {
	Type          string   `json:"type" jsonschema:"enum=activity,enum=mindfulness,enum=social,enum=professional,enum=health,enum=general"`
	Title         string   `json:"title" jsonschema:"required"`
	Description   string   `json:"description" jsonschema:"required"`
	Priority      string   `json:"priority" jsonschema:"enum=low,enum=medium,enum=high"`
	EstimatedTime minutes  `json:"estimatedTime" jsonschema:"type=integer,description=minutes"`
	Tags          []string `json:"tags"`
}

var itemSchema = llmjson.MustSchemaFor[item]()

// GenerativeSelector asks the generator for 3 to 5 recommendations and
// falls back to the fixed list.
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

func (s *GenerativeSelector) Select(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood, moodRating int) []domain.RecommendationDraft {
	drafts, err := s.generate(ctx, content, analysis, mood, moodRating)
	if err != nil {
		s.logger.Warn("recommendation generation fell back", "error", err, "mood", mood)
		return WithCrisisResource(Fallback(mood), analysis)
	}
	if len(drafts) > MaxGenerated {
		drafts = drafts[:MaxGenerated]
	}
	if len(drafts) < MinGenerated {
		drafts = pad(drafts, Fallback(mood))
	}
	return WithCrisisResource(drafts, analysis)
}

func (s *GenerativeSelector) generate(ctx context.Context, content string, analysis domain.AnalysisResult, mood domain.Mood, moodRating int) ([]domain.RecommendationDraft, error) {
	if s.gen == nil {
		return nil, &ai.TransportError{Provider: "recommend", Err: fmt.Errorf("no generator configured")}
	}
	system := "You suggest small, practical wellbeing actions for someone who just wrote in their journal. " +
		"Reply with a JSON array of 3 to 5 objects, each matching this JSON Schema, and nothing else:\n" + itemSchema
	user := fmt.Sprintf(`Suggest 3 to 5 recommendations for this entry.
Mood: %s (%d/10)
Sentiment: %s
Keywords: %s

Journal entry:
%s`, mood, moodRating, analysis.Sentiment, strings.Join(analysis.Keywords, ", "), domain.TruncateRunes(content, maxPromptContent))

	raw, err := s.gen.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}
	items, err := llmjson.DecodeArray[item](raw)
	if err != nil {
		return nil, err
	}
	drafts := make([]domain.RecommendationDraft, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		drafts = append(drafts, Normalize(domain.RecommendationDraft{
			Type:          domain.RecommendationType(it.Type),
			Title:         it.Title,
			Description:   it.Description,
			Priority:      domain.Priority(it.Priority),
			EstimatedTime: int(it.EstimatedTime),
			Tags:          it.Tags,
			AIGenerated:   true,
		}))
	}
	if len(drafts) == 0 {
		return nil, &llmjson.ParseError{Reason: "no usable recommendations"}
	}
	return drafts, nil
}

// pad appends fallback drafts with unused titles until MinGenerated is reached.
func pad(drafts, fallback []domain.RecommendationDraft) []domain.RecommendationDraft {
	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		seen[strings.ToLower(d.Title)] = struct{}{}
	}
	for _, f := range fallback {
		if len(drafts) >= MinGenerated {
			break
		}
		if _, ok := seen[strings.ToLower(f.Title)]; ok {
			continue
		}
		drafts = append(drafts, f)
	}
	return drafts
}
