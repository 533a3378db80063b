package ai

import (
	"context"
	"fmt"
	"strings"
)

// GeminiGenerator wraps GeminiClient with a fixed model for text generation.
type GeminiGenerator struct {
	client *GeminiClient
	model  string
}

// NewGeminiGenerator builds a Gemini-based TextGenerator.
func NewGeminiGenerator(client *GeminiClient, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: strings.TrimSpace(model)}
}

// GenerateText implements TextGenerator using Gemini.
func (g *GeminiGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.model == "" {
		return "", fmt.Errorf("gemini generation model required")
	}
	return g.client.GenerateText(ctx, g.model, systemPrompt, userPrompt)
}
