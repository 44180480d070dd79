package ai

import (
	"context"
	"errors"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var (
	ErrEmptyPrompt   = errors.New("prompt must not be empty")
	ErrEmptyResponse = errors.New("model returned empty response")
	ErrNotConfigured = errors.New("generator is not initialized")
)

// Generator sends one prompt to a text-generation service and returns its
// free-form reply. Implementations must be safe for concurrent use.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Middleware wraps a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(g Generator, middlewares ...Middleware) Generator {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		g = middlewares[i](g)
	}
	return g
}
