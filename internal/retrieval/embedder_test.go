package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestOpenAIEmbedder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-small", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{0.25, 0.5}}},
			"model":  "text-embedding-3-small",
		})
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder("test-api-key", "text-embedding-3-small", server.URL+"/v1")
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "notice period")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5}, vec)

	_, err = NewOpenAIEmbedder(" ", "m", "")
	assert.Error(t, err)
}

type fakeGeminiEmbeddings struct {
	resp  *genai.EmbedContentResponse
	err   error
	model string
}

func (f *fakeGeminiEmbeddings) EmbedContent(_ context.Context, model string, _ []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model = model
	return f.resp, f.err
}

func TestGeminiEmbedder(t *testing.T) {
	t.Parallel()

	fake := &fakeGeminiEmbeddings{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{1, 2, 3}}},
	}}
	e := &GeminiEmbedder{models: fake, model: "text-embedding-004"}

	vec, err := e.Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, "text-embedding-004", fake.model)

	_, err = (&GeminiEmbedder{models: &fakeGeminiEmbeddings{resp: &genai.EmbedContentResponse{}}}).Embed(context.Background(), "q")
	assert.ErrorIs(t, err, errEmptyEmbedding)

	_, err = (&GeminiEmbedder{models: &fakeGeminiEmbeddings{err: errors.New("quota")}}).Embed(context.Background(), "q")
	assert.Error(t, err)
}
