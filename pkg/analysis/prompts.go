package analysis

import (
	"fmt"

	"melify/pkg/domain"
	"melify/pkg/llmjson"
)

const maxPromptContent = 500

// Reply is the shape both analysis calls are asked to return.
type Reply struct {
	Sentiment       string   `json:"sentiment" jsonschema:"required,enum=positive,enum=negative,enum=neutral"`
	Keywords        []string `json:"keywords" jsonschema:"required"`
	Recommendations []string `json:"recommendations,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	MoodInsights    string   `json:"moodInsights,omitempty"`
}

var extractionSchema = llmjson.MustSchemaFor[Reply]()

const systemPrompt = `You are a supportive journaling assistant. You read a user's private journal entry and describe it.
Reply with a single JSON object and nothing else. The object must match this JSON Schema:
` + "%s"

func buildSystemPrompt() string {
	return fmt.Sprintf(systemPrompt, extractionSchema)
}

func buildExtractionPrompt(content string) string {
	return fmt.Sprintf(`Analyze the sentiment of this journal entry.
Return sentiment (positive, negative or neutral), 3 to 5 keywords, 2 or 3 short supportive recommendations and a one sentence summary.

Journal entry:
%s`, domain.TruncateRunes(content, maxPromptContent))
}

func buildEnhancementPrompt(base domain.AnalysisResult, mood domain.Mood, moodRating int) string {
	return fmt.Sprintf(`The user tagged this entry with mood "%s" and rated it %d out of 10.
A first pass produced:
sentiment: %s
keywords: %v
summary: %s

Refine the analysis with the mood context. Include moodInsights, one or two sentences relating the entry to the stated mood.
Omit any field you would not change.`, mood, moodRating, base.Sentiment, base.Keywords, base.Summary)
}
