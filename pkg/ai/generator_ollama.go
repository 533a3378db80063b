package ai

import (
	"context"
	"errors"
	"strings"
)

// jsonTemperature keeps structured replies close to the requested schema.
const jsonTemperature = 0.3

// OllamaGenerator asks a local Ollama model for a JSON reply via /api/chat.
type OllamaGenerator struct {
	client *OllamaClient
	model  string
}

func NewOllamaGenerator(client *OllamaClient, model string) *OllamaGenerator {
	return &OllamaGenerator{client: client, model: strings.TrimSpace(model)}
}

// GenerateText sends format "json" so the model is constrained to a single
// JSON value. Failures are reported as *TransportError.
func (g *OllamaGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.model == "" {
		return "", &TransportError{Provider: "ollama", Err: errors.New("generation model required")}
	}
	req := ollamaChatRequest{
		Model:    g.model,
		Messages: chatTurns(systemPrompt, userPrompt),
		Format:   "json",
		Options:  ollamaOptions{Temperature: jsonTemperature},
	}
	var resp ollamaChatResponse
	if _, err := g.client.doJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", &TransportError{Provider: "ollama", Err: err}
	}
	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", &TransportError{Provider: "ollama", Err: errors.New("empty reply")}
	}
	return text, nil
}

// chatTurn is one message in an Ollama or OpenAI-compatible chat request.
type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatTurns builds the system (when set) and user turns for one call.
func chatTurns(systemPrompt, userPrompt string) []chatTurn {
	out := make([]chatTurn, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		out = append(out, chatTurn{Role: "system", Content: systemPrompt})
	}
	return append(out, chatTurn{Role: "user", Content: userPrompt})
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatTurn    `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  ollamaOptions `json:"options"`
}

type ollamaChatResponse struct {
	Message chatTurn `json:"message"`
}
