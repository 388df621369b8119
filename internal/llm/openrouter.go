package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterHeaders identify the app on OpenRouter's dashboard.
var openRouterHeaders = map[string]string{
	"HTTP-Referer": "https://github.com/abhisek/labquest",
	"X-Title":      "labquest",
}

// OpenRouterProvider targets OpenRouter's OpenAI-compatible API. Model IDs
// pass through unchanged, e.g. "google/gemini-2.0-flash-001".
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{
		OpenAIProvider: newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, openRouterHeaders),
	}, nil
}
