package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 2048
)

// Config holds the settings for the Messages API backend.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
}

// Generator sends single-turn prompts to the Anthropic Messages API.
type Generator struct {
	client      sdk.Client
	modelName   string
	temperature float64
	maxTokens   int64
	ready       bool
}

// NewGenerator validates cfg and builds a client.
func NewGenerator(cfg Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:      sdk.NewClient(opts...),
		modelName:   model,
		temperature: cfg.Temperature,
		maxTokens:   int64(maxTokens),
		ready:       true,
	}, nil
}

// GenerateContent concatenates the text blocks of the reply.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || !g.ready {
		return "", ai.ErrNotConfigured
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ai.ErrEmptyPrompt
	}

	message, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(g.modelName),
		MaxTokens:   g.maxTokens,
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
		Temperature: sdk.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			builder.WriteString(text.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ai.ErrEmptyResponse
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
