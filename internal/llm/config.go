package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration. API keys are read from the
// environment and never from the config file.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock", "none"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// ProviderNone disables LLM features.
const ProviderNone = "none"

// DefaultConfig returns a Config with sensible defaults. The provider is
// left empty so that key discovery can pick one.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model: "claude-haiku-4-5",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-001",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ApplyEnv overlays LABQUEST_* environment variables onto c. When no
// provider is configured, the first standard API key variable found picks
// one (Gemini, then OpenAI, Anthropic, OpenRouter).
func (c Config) ApplyEnv() Config {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, "LABQUEST_LLM_PROVIDER")

	set(&c.Anthropic.APIKey, "LABQUEST_ANTHROPIC_API_KEY")
	set(&c.Anthropic.Model, "LABQUEST_ANTHROPIC_MODEL")

	set(&c.OpenAI.APIKey, "LABQUEST_OPENAI_API_KEY")
	set(&c.OpenAI.Model, "LABQUEST_OPENAI_MODEL")
	set(&c.OpenAI.BaseURL, "LABQUEST_OPENAI_BASE_URL")

	set(&c.Gemini.APIKey, "LABQUEST_GEMINI_API_KEY")
	set(&c.Gemini.Model, "LABQUEST_GEMINI_MODEL")

	set(&c.OpenRouter.APIKey, "LABQUEST_OPENROUTER_API_KEY")
	set(&c.OpenRouter.Model, "LABQUEST_OPENROUTER_MODEL")

	if c.Provider == "" {
		c = c.discover()
	}
	return c
}

// discover probes standard API key env vars in priority order.
func (c Config) discover() Config {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Provider = "gemini"
		c.Gemini.APIKey = k
		return c
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.Provider = "openai"
		c.OpenAI.APIKey = k
		return c
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Provider = "anthropic"
		c.Anthropic.APIKey = k
		return c
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		c.Provider = "openrouter"
		c.OpenRouter.APIKey = k
		return c
	}
	return c
}

// ConfigFromEnv builds a Config from defaults and the environment.
func ConfigFromEnv() Config {
	return DefaultConfig().ApplyEnv()
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("LABQUEST_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("LABQUEST_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("LABQUEST_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("LABQUEST_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock", ProviderNone:
		// No API key needed.
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
