// Package agent implements the HR pipelines and the router that dispatches
// requests to them. Pipelines combine a similarity lookup, a call to the
// generation service and deterministic scoring; every outcome carries a
// reasoning trail describing the branches taken.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/extract"
	"github.com/lucienvoid/ai-hr-agent/internal/retrieval"
)

// Context sizes per use site.
const (
	screeningContextK  = 2
	interviewContextK  = 4
	evaluationContextK = 4
	qaContextK         = 4
)

type contextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) retrieval.Chunks
}

type textGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type structuredExtractor interface {
	Extract(ctx context.Context, build extract.PromptBuilder) (extract.Result, error)
}

// Agent holds the collaborators shared by every pipeline. It keeps no
// per-request state and is safe for concurrent use.
type Agent struct {
	retriever contextRetriever
	generator textGenerator
	extractor structuredExtractor
	prompts   *Prompts
	logger    *zap.Logger
}

// New wires an Agent. prompts may be nil to use the built-in catalogue.
func New(retriever contextRetriever, generator textGenerator, extractor structuredExtractor, prompts *Prompts, logger *zap.Logger) *Agent {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		retriever: retriever,
		generator: generator,
		extractor: extractor,
		prompts:   prompts,
		logger:    logger,
	}
}

// retrievalStep fetches context and describes the lookup for the audit trail.
func (a *Agent) retrievalStep(ctx context.Context, query string, k int, what string) (retrieval.Chunks, string) {
	chunks := a.retriever.Retrieve(ctx, query, k)
	if chunks.Empty() {
		return chunks, fmt.Sprintf("No %s retrieved from vector DB (%s)", what, chunks.Miss)
	}
	return chunks, fmt.Sprintf("Retrieved %d %s chunk(s) from vector DB", chunks.Len(), what)
}

// extractionSteps describes the repair path an extraction took.
func extractionSteps(res extract.Result) []string {
	if !res.Retried() {
		return nil
	}
	return []string{"Model output was not valid JSON; retried once with a strict JSON-only directive"}
}
