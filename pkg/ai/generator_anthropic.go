package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-haiku-4-5-20251001"
	defaultAnthropicMaxTokens = 1024
)

// AnthropicGenerator uses the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicGenerator builds an Anthropic-backed TextGenerator.
func NewAnthropicGenerator(apiKey, baseURL, model string) (*AnthropicGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: defaultAnthropicMaxTokens,
	}, nil
}

// GenerateText implements TextGenerator; text blocks of the reply are concatenated.
func (g *AnthropicGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if trimmed := strings.TrimSpace(systemPrompt); trimmed != "" {
		params.System = []anthropic.TextBlockParam{{Text: trimmed}}
	}
	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response from anthropic")
	}
	return text, nil
}
