package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator uses the official OpenAI SDK chat completions endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds an OpenAI-backed TextGenerator.
// baseURL is optional; SDK retries are disabled because callers own the fallback policy.
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key required")
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
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model}, nil
}

// GenerateText implements TextGenerator using chat completions.
func (g *OpenAIGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return text, nil
}
