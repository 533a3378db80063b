package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TextGenerator generates text from a system prompt and user prompt.
// All LLM providers (Gemini, Ollama, OpenAI, Anthropic, OpenAI-compatible) implement this interface.
// Implementations do not retry.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrTransport matches every TransportError via errors.Is.
var ErrTransport = errors.New("text generation unavailable")

// TransportError reports an unreachable, failing or quota-limited provider.
// Timeouts are reported the same way.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

const DefaultTimeout = 20 * time.Second

type timeoutGenerator struct {
	next     TextGenerator
	provider string
	timeout  time.Duration
}

// WithTimeout bounds every call to next and reports all failures as *TransportError.
func WithTimeout(next TextGenerator, provider string, timeout time.Duration) TextGenerator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = "generator"
	}
	return &timeoutGenerator{next: next, provider: provider, timeout: timeout}
}

func (g *timeoutGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.next == nil {
		return "", &TransportError{Provider: g.provider, Err: errors.New("no generator configured")}
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.next.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", g.timeout, err)
		}
		return "", &TransportError{Provider: g.provider, Err: err}
	}
	return text, nil
}
