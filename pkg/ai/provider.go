package ai

import (
	"fmt"
	"strings"
	"time"
)

// ProviderConfig selects and configures one text generation backend.
type ProviderConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// NewGenerator builds the configured provider wrapped with WithTimeout.
// Supported providers: gemini, ollama, openai, anthropic, openai-compat.
func NewGenerator(cfg ProviderConfig) (TextGenerator, error) {
	provider := normalizeProvider(cfg.Provider)
	var (
		gen TextGenerator
		err error
	)
	switch provider {
	case "gemini":
		var client *GeminiClient
		client, err = NewGeminiClient(cfg.APIKey, cfg.BaseURL)
		if err == nil {
			gen = NewGeminiGenerator(client, cfg.Model)
		}
	case "ollama":
		gen = NewOllamaGenerator(NewOllamaClient(cfg.BaseURL), cfg.Model)
	case "openai":
		gen, err = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "anthropic":
		gen, err = NewAnthropicGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "openai-compat":
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("openai-compat base URL required")
		}
		gen = NewOpenAICompatGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(gen, provider, cfg.Timeout), nil
}

func normalizeProvider(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	p = strings.ReplaceAll(p, "_", "-")
	switch p {
	case "", "gemini", "google":
		return "gemini"
	case "openai-compatible", "openaicompat":
		return "openai-compat"
	case "claude":
		return "anthropic"
	}
	return p
}
