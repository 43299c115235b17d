package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/focuslab/internal/store"
)

// NewProvider creates a Provider from configuration. Every request is
// bounded by cfg.Timeout and, when events is non-nil, recorded there.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → logging → base
	p := base
	if events != nil {
		p = WithLogging(p, events, logger)
	}
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}
