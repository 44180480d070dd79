package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"google.golang.org/genai"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
)

type fakeModels struct {
	mu     sync.Mutex
	resp   *genai.GenerateContentResponse
	err    error
	calls  int
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGenerateContentJoinsParts(t *testing.T) {
	models := &fakeModels{resp: textResponse(" {\"a\": ", "", "1} ")}
	g := newGenerator(models, "", 0.2)

	output, err := g.GenerateContent(context.Background(), "  evaluate this  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "{\"a\":\n1}" {
		t.Fatalf("unexpected output: %q", output)
	}
	if models.model != defaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if models.prompt != "evaluate this" {
		t.Fatalf("expected trimmed prompt, got %q", models.prompt)
	}
	if models.config == nil || models.config.Temperature == nil || *models.config.Temperature != float32(0.2) {
		t.Fatalf("expected temperature to be forwarded, got %+v", models.config)
	}
}

func TestGenerateContentErrors(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}

	tests := []struct {
		name   string
		models *fakeModels
		prompt string
		want   error
		calls  int
	}{
		{name: "empty prompt", models: &fakeModels{}, prompt: "   ", want: ai.ErrEmptyPrompt},
		{name: "empty response", models: &fakeModels{resp: textResponse("  ")}, prompt: "p", want: ai.ErrEmptyResponse, calls: 1},
		{name: "nil response", models: &fakeModels{}, prompt: "p", want: ai.ErrEmptyResponse, calls: 1},
		{name: "api error is wrapped", models: &fakeModels{err: apiErr}, prompt: "p", calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.models, "gemini-pro", 0)

			_, err := g.GenerateContent(context.Background(), tt.prompt)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.models.calls != tt.calls {
				t.Fatalf("expected %d calls, got %d", tt.calls, tt.models.calls)
			}
		})
	}
}

func TestGeneratorNotInitialized(t *testing.T) {
	var g *Generator
	if _, err := g.GenerateContent(context.Background(), "p"); !errors.Is(err, ai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if g.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), Config{APIKey: "  "}); err == nil {
		t.Fatalf("expected error for blank api key")
	}
}
