// Package extract turns free-form model replies into structured data. A reply
// is accepted only if it contains a JSON object; otherwise the prompt is rebuilt
// once with a stricter directive and the reply is parsed again. Exhausting both
// attempts yields an Unparseable result rather than an error.
package extract

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
	"github.com/lucienvoid/ai-hr-agent/internal/utils"
	"go.uber.org/zap"
)

// StrictDirective is prepended to the prompt on the repair attempt.
const StrictDirective = "RETURN JSON ONLY. NO TEXT."

const (
	maxAttempts         = 2
	defaultMaxLogLength = 200
)

// Status tags how far a reply got through parsing and schema decoding.
type Status string

const (
	Parsed        Status = "parsed"
	SchemaInvalid Status = "schema_invalid"
	Unparseable   Status = "unparseable"
)

// GenerationFailed is the observer label for extractions cut short by a
// generation error. It never appears in a Result.
const GenerationFailed = "generation_failed"

// PromptBuilder returns the prompt for the given zero-based attempt.
type PromptBuilder func(attempt int) string

// Strict builds base unchanged on the first attempt and prefixes it with
// StrictDirective on every later one.
func Strict(base string) PromptBuilder {
	return func(attempt int) string {
		if attempt == 0 {
			return base
		}
		return StrictDirective + "\n" + base
	}
}

// Result is the outcome of an extraction. Data is non-nil only when Status is
// Parsed.
type Result struct {
	Status   Status
	Data     map[string]any
	Raw      string
	Attempts int
	// Cause explains a SchemaInvalid or Unparseable status.
	Cause error
}

// OK reports whether the result carries usable data.
func (r Result) OK() bool {
	return r.Status == Parsed && r.Data != nil
}

// Retried reports whether the repair attempt was needed.
func (r Result) Retried() bool {
	return r.Attempts > 1
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Observer receives one notification per finished extraction.
type Observer interface {
	ObserveExtraction(status string, attempts int)
}

type Extractor struct {
	generator contentGenerator
	observer  Observer
	logger    *zap.Logger
	maxLogLen int
}

// New returns an Extractor. observer may be nil.
func New(generator contentGenerator, observer Observer, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		observer:  observer,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Extract runs at most two generation calls. A generation error is returned
// immediately and is never retried; only parse failures trigger the repair
// attempt. An empty reply counts as a parse failure.
func (e *Extractor) Extract(ctx context.Context, build PromptBuilder) (Result, error) {
	if e == nil || e.generator == nil {
		return Result{}, fmt.Errorf("extractor is not initialized")
	}
	if build == nil {
		return Result{}, fmt.Errorf("prompt builder is required")
	}

	var (
		raw      string
		parseErr error
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		prompt := build(attempt)

		e.logger.Debug("structured completion request",
			zap.Int("attempt", attempt+1),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
		)

		out, err := e.generator.GenerateContent(ctx, prompt)
		if err != nil && !errors.Is(err, ai.ErrEmptyResponse) {
			e.observe(GenerationFailed, attempt+1)
			return Result{Status: Unparseable, Raw: raw, Attempts: attempt + 1, Cause: err},
				fmt.Errorf("generate structured completion: %w", err)
		}
		raw = out

		e.logger.Debug("structured completion response",
			zap.Int("attempt", attempt+1),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
		)

		data, err := Parse(raw)
		if err == nil {
			return e.finish(Result{Status: Parsed, Data: data, Raw: raw, Attempts: attempt + 1}), nil
		}

		parseErr = err
		e.logger.Debug("structured completion parse failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	e.logger.Warn("structured completion unparseable after retry",
		zap.Int("attempts", maxAttempts),
		zap.Error(parseErr),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return e.finish(Result{Status: Unparseable, Raw: raw, Attempts: maxAttempts, Cause: parseErr}), nil
}

func (e *Extractor) finish(r Result) Result {
	e.observe(string(r.Status), r.Attempts)
	return r
}

func (e *Extractor) observe(status string, attempts int) {
	if e.observer != nil {
		e.observer.ObserveExtraction(status, attempts)
	}
}
