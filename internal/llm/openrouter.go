package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Attribution OpenRouter shows on its model leaderboards.
	openRouterReferer = "https://github.com/abhisek/focuslab"
	openRouterTitle   = "focuslab"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// are used as given ("anthropic/claude-3-haiku") and errors are reported
// against "openrouter".
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterBaseURL
	}
	config.HTTPClient = &http.Client{Transport: attribution{next: http.DefaultTransport}}

	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		name:   "openrouter",
	}}, nil
}

// attribution adds OpenRouter's app attribution headers to each request.
type attribution struct{ next http.RoundTripper }

func (a attribution) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return a.next.RoundTrip(req)
}
