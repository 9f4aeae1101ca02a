// Package llm adapts hosted text-generation APIs to the pipeline's
// opaque generator contract.
package llm

import "context"

// Provider is a hosted text-generation backend. Generate performs one
// completion call; the pipeline treats it as atomic and may wrap it in
// caller-side timeouts.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

const defaultMaxTokens = 4096
