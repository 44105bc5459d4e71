package llm

import (
	"fmt"
	"strings"

	"github.com/eidolonhq/eidolon/internal/model"
)

// NewProvider builds a provider from configuration. An empty provider name
// disables the analyst layer and returns (nil, nil).
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return newOpenAIProvider("openai", cfg), nil

	case "openrouter":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openrouter provider requires an api key")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://openrouter.ai/api/v1"
		}
		return newOpenAIProvider("openrouter", cfg), nil

	case "ollama":
		// Local Ollama serves the OpenAI-compatible surface under /v1 and
		// ignores the bearer token.
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434/v1"
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return newOpenAIProvider("ollama", cfg), nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, openrouter, ollama)", cfg.Provider)
	}
}
