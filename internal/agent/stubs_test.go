package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/extract"
	"github.com/lucienvoid/ai-hr-agent/internal/retrieval"
)

type stubRetriever struct {
	mu      sync.Mutex
	chunks  []string
	miss    string
	queries []string
	ks      []int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, k int) retrieval.Chunks {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, query)
	s.ks = append(s.ks, k)

	if len(s.chunks) == 0 {
		miss := s.miss
		if miss == "" {
			miss = "no matching chunks"
		}
		return retrieval.Chunks{Miss: miss}
	}

	items := make([]retrieval.Chunk, 0, len(s.chunks))
	for _, text := range s.chunks {
		items = append(items, retrieval.Chunk{Text: text})
	}
	return retrieval.Chunks{Items: items}
}

func (s *stubRetriever) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type stubGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if idx < len(s.replies) {
		return s.replies[idx], nil
	}
	if len(s.replies) > 0 {
		return s.replies[len(s.replies)-1], nil
	}
	return "ok", nil
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubGenerator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func newTestAgent(ret *stubRetriever, gen *stubGenerator) *Agent {
	return New(ret, gen, extract.New(gen, nil, zap.NewNop(), 0), nil, zap.NewNop())
}
