package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider implements Provider for the Anthropic Messages API.
type AnthropicProvider struct {
	client      *anthropic.Client
	model       string
	temperature float32
}

// AnthropicConfig holds configuration for the Anthropic provider
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaude3Dot5SonnetLatest)
	}

	opts := []anthropic.ClientOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Generate performs a single messages call.
func (p *AnthropicProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		System:    system,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	}
	if p.temperature > 0 {
		temp := p.temperature
		req.Temperature = &temp
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		b.WriteString(content.GetText())
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return b.String(), nil
}
