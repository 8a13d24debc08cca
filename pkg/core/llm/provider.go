// Package llm wraps the language model backends used by the blank-filling agent.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Option keys understood by the providers.
const (
	OptionModel    = "model"     // string, overrides the provider default
	OptionJSONMode = "json_mode" // bool, ask for a JSON response body
)

func stringOption(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func boolOption(options map[string]interface{}, key string) bool {
	val, ok := options[key].(bool)
	return ok && val
}
