// Package narrative fetches free-text growth-initiative commentary for a
// ticker from a configurable LLM provider. Failures always degrade to a
// fixed fallback string; nothing in this package is fatal to a valuation.
package narrative

import (
	"context"
)

// Provider is the interface for all narrative model providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Message is a chat-completions message shared by the HTTP providers.
type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
