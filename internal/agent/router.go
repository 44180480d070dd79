package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/logger"
)

const (
	unknownIntentMessage  = "Unknown intent"
	executionErrorMessage = "Agent execution error: "
)

// Dispatch outcome labels reported to a DispatchObserver.
const (
	OutcomeOK            = "ok"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
	OutcomeUnknownIntent = "unknown_intent"
)

type handlerFunc func(ctx context.Context, payload map[string]string) (Outcome, error)

// DispatchObserver receives one notification per dispatch.
type DispatchObserver interface {
	ObserveDispatch(intent, outcome string, elapsed time.Duration)
}

// Router is the single place where pipeline errors become the external
// {"error": ...} envelope.
type Router struct {
	handlers map[Intent]handlerFunc
	observer DispatchObserver
	tracer   trace.Tracer
	logger   *zap.Logger
	newID    func() string
}

// NewRouter registers the agent's pipelines. observer and tracer may be nil.
func NewRouter(a *Agent, observer DispatchObserver, tracer trace.Tracer, log *zap.Logger) *Router {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("hr-agent")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Router{
		handlers: map[Intent]handlerFunc{
			ResumeScreening: func(ctx context.Context, p map[string]string) (Outcome, error) {
				return a.ScreenResume(ctx, p[FieldResumeText], p[FieldJobDescription])
			},
			InterviewGeneration: func(ctx context.Context, p map[string]string) (Outcome, error) {
				return a.GenerateQuestions(ctx, p[FieldJobDescription], p[FieldRoleLevel])
			},
			InterviewEvaluation: func(ctx context.Context, p map[string]string) (Outcome, error) {
				return a.EvaluateAnswer(ctx, p[FieldQuestion], p[FieldAnswer], p[FieldJobDescription], p[FieldRoleLevel])
			},
			HRQA: func(ctx context.Context, p map[string]string) (Outcome, error) {
				return a.AnswerQuestion(ctx, p[FieldQuestion])
			},
		},
		observer: observer,
		tracer:   tracer,
		logger:   log,
		newID:    uuid.NewString,
	}
}

// Lookup resolves an intent name. Matching is exact: no case folding and no
// whitespace trimming.
func (r *Router) Lookup(name string) (Intent, error) {
	intent := Intent(name)
	if _, ok := r.handlers[intent]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, name)
	}
	return intent, nil
}

// Dispatch runs the pipeline for intent. It never returns nil and never
// panics: unknown intents, handler errors and handler panics all resolve to an
// ErrorOutcome.
func (r *Router) Dispatch(ctx context.Context, intent string, payload map[string]string) Outcome {
	start := time.Now()
	requestID := r.newID()
	log := logger.WithFields(r.logger, logger.RequestFields(requestID, intent)...)

	ctx, span := r.tracer.Start(ctx, "agent.dispatch", trace.WithAttributes(
		attribute.String("agent.intent", intent),
		attribute.String("agent.request_id", requestID),
	))
	defer span.End()

	resolved, err := r.Lookup(intent)
	if err != nil {
		log.Info("unknown intent")
		span.SetStatus(codes.Error, unknownIntentMessage)
		r.observe("unknown", OutcomeUnknownIntent, start)
		return ErrorOutcome{Error: unknownIntentMessage}
	}

	log.Debug("dispatching")

	out, err := r.run(ctx, r.handlers[resolved], withDefaults(resolved, payload))
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			log.Error("upstream failure", zap.String("stage", upstreamErr.Stage), zap.Error(upstreamErr.Err))
		} else {
			log.Error("agent execution failed", zap.Error(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.observe(string(resolved), OutcomeError, start)
		return ErrorOutcome{Error: executionErrorMessage + err.Error()}
	}

	label := Classify(out)

	log.Info("dispatch finished", zap.String("outcome", label), zap.Duration("elapsed", time.Since(start)))
	r.observe(string(resolved), label, start)
	return out
}

func (r *Router) run(ctx context.Context, h handlerFunc, payload map[string]string) (out Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	out, err = h(ctx, payload)
	if err == nil && out == nil {
		err = errors.New("handler returned no outcome")
	}
	return out, err
}

func (r *Router) observe(intent, outcome string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDispatch(intent, outcome, time.Since(start))
	}
}

// withDefaults copies payload and fills every field the intent reads with ""
// when absent.
func withDefaults(intent Intent, payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload)+len(intent.Fields()))
	for k, v := range payload {
		out[k] = v
	}
	for _, field := range intent.Fields() {
		if _, ok := out[field]; !ok {
			out[field] = ""
		}
	}
	return out
}

// Classify maps an outcome onto one of the dispatch outcome labels.
func Classify(out Outcome) string {
	e, ok := out.(ErrorOutcome)
	switch {
	case out == nil:
		return OutcomeError
	case !ok:
		return OutcomeOK
	case e.Error == unknownIntentMessage:
		return OutcomeUnknownIntent
	case strings.HasPrefix(e.Error, executionErrorMessage):
		return OutcomeError
	default:
		return OutcomeRejected
	}
}
