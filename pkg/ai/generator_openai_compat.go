package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatGenerator calls a /chat/completions endpoint that speaks the
// OpenAI wire format (vLLM, LiteLLM, LocalAI, OpenRouter) and requests a
// JSON object reply.
type OpenAICompatGenerator struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatGenerator takes a baseURL including the /v1 prefix, e.g.
// "http://localhost:8000/v1". apiKey may be empty for local gateways.
func NewOpenAICompatGenerator(baseURL, apiKey, model string) *OpenAICompatGenerator {
	return &OpenAICompatGenerator{
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/chat/completions",
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *OpenAICompatGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.model == "" {
		return "", &TransportError{Provider: "openai-compat", Err: errors.New("generation model required")}
	}
	text, err := g.complete(ctx, oaiChatRequest{
		Model:          g.model,
		Messages:       chatTurns(systemPrompt, userPrompt),
		Temperature:    jsonTemperature,
		ResponseFormat: &oaiResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", &TransportError{Provider: "openai-compat", Err: err}
	}
	return text, nil
}

func (g *OpenAICompatGenerator) complete(ctx context.Context, reqBody oaiChatRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if msg := strings.TrimSpace(errResp.Error.Message); msg != "" {
			return "", fmt.Errorf("api error %d: %s", resp.StatusCode, msg)
		}
		return "", fmt.Errorf("api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices in reply")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty reply")
	}
	return text, nil
}

type oaiResponseFormat struct {
	Type string `json:"type"`
}

type oaiChatRequest struct {
	Model          string             `json:"model"`
	Messages       []chatTurn         `json:"messages"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat *oaiResponseFormat `json:"response_format,omitempty"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message chatTurn `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
