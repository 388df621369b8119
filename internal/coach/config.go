package coach

// Config holds review note generation settings.
type Config struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// PromptBudget caps the characters of missed-question detail sent to
	// the model. Over budget, scenarios and explanations are dropped.
	PromptBudget int `yaml:"prompt_budget"`
}

// DefaultConfig returns defaults for note generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    512,
		Temperature:  0.4,
		PromptBudget: 2400,
	}
}
