package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/lucienvoid/ai-hr-agent/internal/logger"
	"github.com/lucienvoid/ai-hr-agent/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Request outcome labels reported to a LatencyObserver.
const (
	StatusSuccess = "success"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// WithTimeout bounds every call with its own deadline. A shorter deadline on
// the incoming context still wins.
func WithTimeout(timeout time.Duration) Middleware {
	return func(next Generator) Generator {
		if timeout <= 0 {
			return next
		}
		return &timeoutGenerator{next: next, timeout: timeout}
	}
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

func (t *timeoutGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GenerateContent(ctx, prompt)
}

func (t *timeoutGenerator) Model() string { return t.next.Model() }

// WithRateLimit paces calls with a token bucket shared by every wrapped
// generator built from the returned middleware.
func WithRateLimit(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next Generator) Generator {
		return &rateLimitedGenerator{next: next, limiter: limiter}
	}
}

type rateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

func (r *rateLimitedGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.GenerateContent(ctx, prompt)
}

func (r *rateLimitedGenerator) Model() string { return r.next.Model() }

// LatencyObserver records the duration and outcome of generation calls.
type LatencyObserver interface {
	ObserveGeneration(provider, model, status string, elapsed time.Duration)
}

// WithMetrics reports every call to observer. A nil observer disables it.
func WithMetrics(observer LatencyObserver, provider string) Middleware {
	return func(next Generator) Generator {
		if observer == nil {
			return next
		}
		return &metricsGenerator{next: next, observer: observer, provider: provider}
	}
}

type metricsGenerator struct {
	next     Generator
	observer LatencyObserver
	provider string
}

func (m *metricsGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := m.next.GenerateContent(ctx, prompt)
	m.observer.ObserveGeneration(m.provider, m.next.Model(), StatusFor(ctx, err), time.Since(start))
	return out, err
}

func (m *metricsGenerator) Model() string { return m.next.Model() }

// StatusFor classifies the result of a generation call.
func StatusFor(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusError
	}
}

// WithTracing opens an "llm.generate" span around every call.
func WithTracing(tracer trace.Tracer, provider string) Middleware {
	return func(next Generator) Generator {
		if tracer == nil {
			return next
		}
		return &tracedGenerator{next: next, tracer: tracer, provider: provider}
	}
}

type tracedGenerator struct {
	next     Generator
	tracer   trace.Tracer
	provider string
}

func (t *tracedGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(
			attribute.String("llm.provider", t.provider),
			attribute.String("llm.model", t.next.Model()),
			attribute.Int("llm.prompt.length", utf8.RuneCountInString(prompt)),
		),
	)
	defer span.End()

	out, err := t.next.GenerateContent(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	span.SetAttributes(attribute.Int("llm.response.length", utf8.RuneCountInString(out)))
	return out, nil
}

func (t *tracedGenerator) Model() string { return t.next.Model() }

// WithLogging logs failed calls at warn level and call timing at debug level.
func WithLogging(log *zap.Logger, provider string, maxLogLength int) Middleware {
	return func(next Generator) Generator {
		return &loggedGenerator{
			next:      next,
			logger:    logger.WithFields(log, logger.CommonFields(provider, next.Model())...),
			maxLogLen: maxLogLength,
		}
	}
}

type loggedGenerator struct {
	next      Generator
	logger    *zap.Logger
	maxLogLen int
}

func (l *loggedGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := l.next.GenerateContent(ctx, prompt)
	if err != nil {
		l.logger.Warn("generate content failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, l.maxLogLen)),
		)
		return out, err
	}

	l.logger.Debug("generate content finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_length", utf8.RuneCountInString(out)),
	)
	return out, nil
}

func (l *loggedGenerator) Model() string { return l.next.Model() }
