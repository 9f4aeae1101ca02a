package llm

import (
	"fmt"

	"github.com/kayz/codeloom/internal/config"
)

// NewProvider builds the configured provider.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			DefaultModel: "gpt-4",
		})
	case "deepseek":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "deepseek",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			DefaultURL:   "https://api.deepseek.com/v1",
			DefaultModel: "deepseek-chat",
		})
	case "openai-compat":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai-compat provider requires base_url")
		}
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "openai-compat",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
		})
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
