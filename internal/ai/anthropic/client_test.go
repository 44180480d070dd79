package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
)

func messageServer(t *testing.T, status int, body any, seen *map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))

		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func message(blocks ...map[string]any) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       defaultModel,
		"content":     blocks,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}
}

func TestGenerateContent(t *testing.T) {
	t.Parallel()

	var request map[string]any
	server := messageServer(t, http.StatusOK, message(
		map[string]any{"type": "text", "text": "{\"answer\": "},
		map[string]any{"type": "text", "text": "\"yes\"}"},
	), &request)

	g, err := NewGenerator(Config{APIKey: "test-api-key", Temperature: 0.2, BaseURL: server.URL})
	require.NoError(t, err)

	out, err := g.GenerateContent(context.Background(), "what is the leave policy?")
	require.NoError(t, err)
	assert.Equal(t, `{"answer": "yes"}`, out)

	assert.Equal(t, defaultModel, request["model"])
	assert.InDelta(t, float64(defaultMaxTokens), request["max_tokens"], 1e-9)
	assert.InDelta(t, 0.2, request["temperature"], 1e-9)
}

func TestGenerateContentEmpty(t *testing.T) {
	t.Parallel()

	server := messageServer(t, http.StatusOK, message(map[string]any{"type": "text", "text": "   "}), nil)

	g, err := NewGenerator(Config{APIKey: "test-api-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = g.GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestGenerateContentAPIError(t *testing.T) {
	t.Parallel()

	server := messageServer(t, http.StatusBadRequest, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "invalid_request_error", "message": "bad"},
	}, nil)

	g, err := NewGenerator(Config{APIKey: "test-api-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = g.GenerateContent(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic messages")
}

func TestGeneratorGuards(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(Config{APIKey: " "})
	assert.Error(t, err)

	var g *Generator
	_, err = g.GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)

	g, err = NewGenerator(Config{APIKey: "k", Model: "claude-sonnet-4-0"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-0", g.Model())

	_, err = g.GenerateContent(context.Background(), "")
	assert.ErrorIs(t, err, ai.ErrEmptyPrompt)
}
