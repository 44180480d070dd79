// Package retrieval looks up supporting context for a prompt in a similarity
// index. Lookups never fail from the caller's point of view: any problem with
// the index turns into an empty result that carries the reason.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/utils"
)

// Retrieval results reported to an Observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

// Chunk is an opaque unit of reference text returned by the index.
type Chunk struct {
	Text string
}

// Chunks is an ordered, most-similar-first retrieval result. Miss is set
// whenever the result is empty.
type Chunks struct {
	Items []Chunk
	Miss  string
}

func (c Chunks) Len() int { return len(c.Items) }

func (c Chunks) Empty() bool { return len(c.Items) == 0 }

// Join concatenates chunk texts with sep.
func (c Chunks) Join(sep string) string {
	texts := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		texts = append(texts, item.Text)
	}
	return strings.Join(texts, sep)
}

// Index is a top-k nearest chunk lookup.
type Index interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]string, error)
}

// Observer receives one notification per retrieval.
type Observer interface {
	ObserveRetrieval(result string, chunks int)
}

type Retriever struct {
	index     Index
	observer  Observer
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

// New returns a Retriever. A nil index is allowed and yields empty results.
func New(index Index, observer Observer, logger *zap.Logger, timeout time.Duration) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		index:     index,
		observer:  observer,
		logger:    logger,
		timeout:   timeout,
		maxLogLen: 80,
	}
}

// Retrieve returns at most k chunks in the index's order.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) Chunks {
	if r == nil || r.index == nil {
		return r.miss(ResultError, "no similarity index configured", query)
	}
	if k <= 0 {
		return r.miss(ResultSkipped, "no chunks requested", query)
	}
	if strings.TrimSpace(query) == "" {
		return r.miss(ResultSkipped, "empty query", query)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	texts, err := r.search(ctx, query, k)
	if err != nil {
		return r.miss(ResultError, fmt.Sprintf("similarity search failed: %v", err), query)
	}

	if len(texts) > k {
		texts = texts[:k]
	}
	if len(texts) == 0 {
		return r.miss(ResultMiss, "no matching chunks", query)
	}

	items := make([]Chunk, 0, len(texts))
	for _, text := range texts {
		items = append(items, Chunk{Text: text})
	}

	r.logger.Debug("context retrieved",
		zap.Int("requested", k),
		zap.Int("returned", len(items)),
		zap.String("query_preview", utils.TruncateForLog(query, r.maxLogLen)),
	)
	r.observe(ResultHit, len(items))

	return Chunks{Items: items}
}

func (r *Retriever) search(ctx context.Context, query string, k int) (texts []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("index panicked: %v", rec)
		}
	}()
	return r.index.SimilaritySearch(ctx, query, k)
}

func (r *Retriever) miss(result, reason, query string) Chunks {
	if r != nil {
		level := r.logger.Debug
		if result == ResultError {
			level = r.logger.Warn
		}
		level("context retrieval returned nothing",
			zap.String("reason", reason),
			zap.String("query_preview", utils.TruncateForLog(query, r.maxLogLen)),
		)
		r.observe(result, 0)
	}
	return Chunks{Miss: reason}
}

func (r *Retriever) observe(result string, n int) {
	if r.observer != nil {
		r.observer.ObserveRetrieval(result, n)
	}
}
