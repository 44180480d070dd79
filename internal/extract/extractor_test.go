package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.replies) {
		return s.replies[idx], nil
	}
	return "", nil
}

type recordingObserver struct {
	status   string
	attempts int
	calls    int
}

func (r *recordingObserver) ObserveExtraction(status string, attempts int) {
	r.status = status
	r.attempts = attempts
	r.calls++
}

func TestExtractFirstAttempt(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{replies: []string{"Sure! ```json\n{\"base_score\": 80}\n``` hope this helps"}}
	obs := &recordingObserver{}

	res, err := New(gen, obs, zap.NewNop(), 0).Extract(context.Background(), Strict("evaluate"))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.False(t, res.Retried())
	assert.Equal(t, Parsed, res.Status)
	assert.Equal(t, 1, res.Attempts)
	assert.InDelta(t, 80.0, res.Data["base_score"], 1e-9)
	assert.Equal(t, []string{"evaluate"}, gen.prompts)
	assert.Equal(t, "parsed", obs.status)
	assert.Equal(t, 1, obs.calls)
}

func TestExtractRetriesWithStrictDirective(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{replies: []string{"I cannot produce JSON today.", `{"technical": ["q1"]}`}}

	res, err := New(gen, nil, nil, 0).Extract(context.Background(), Strict("generate questions"))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.True(t, res.Retried())
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "generate questions", gen.prompts[0])
	assert.Equal(t, StrictDirective+"\ngenerate questions", gen.prompts[1])
}

func TestExtractGivesUpAfterTwoAttempts(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	gen := &stubGenerator{replies: []string{"nope", "still {not json", "never asked"}}
	obs := &recordingObserver{}

	res, err := New(gen, obs, zap.New(core), 0).Extract(context.Background(), Strict("p"))
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, Unparseable, res.Status)
	assert.Nil(t, res.Data)
	assert.Equal(t, "still {not json", res.Raw)
	assert.Equal(t, 2, res.Attempts)
	assert.Error(t, res.Cause)
	assert.Len(t, gen.prompts, 2)
	assert.Equal(t, "unparseable", obs.status)
	assert.Equal(t, 1, logs.FilterMessage("structured completion unparseable after retry").Len())
}

func TestExtractDoesNotRetryTransportErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	gen := &stubGenerator{errs: []error{boom}}
	obs := &recordingObserver{}

	res, err := New(gen, obs, zap.NewNop(), 0).Extract(context.Background(), Strict("p"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, gen.prompts, 1)
	assert.False(t, res.OK())
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, GenerationFailed, obs.status)
	assert.Equal(t, 1, obs.attempts)
}

func TestExtractEmptyReplyTakesRepairPath(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{errs: []error{ai.ErrEmptyResponse, ai.ErrEmptyResponse}}
	obs := &recordingObserver{}

	res, err := New(gen, obs, zap.NewNop(), 0).Extract(context.Background(), Strict("p"))
	require.NoError(t, err)

	assert.Equal(t, Unparseable, res.Status)
	assert.Equal(t, 2, res.Attempts)
	assert.ErrorIs(t, res.Cause, ErrNoObject)
	require.Len(t, gen.prompts, 2)
	assert.True(t, strings.HasPrefix(gen.prompts[1], StrictDirective))
	assert.Equal(t, "unparseable", obs.status)
}

func TestExtractEmptyReplyThenJSON(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{errs: []error{ai.ErrEmptyResponse}, replies: []string{"", `{"base_score": 61}`}}

	res, err := New(gen, nil, nil, 0).Extract(context.Background(), Strict("p"))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.True(t, res.Retried())
	assert.InDelta(t, 61.0, res.Data["base_score"], 1e-9)
}

func TestExtractTransportErrorOnRepairAttempt(t *testing.T) {
	t.Parallel()

	boom := errors.New("rate limited")
	gen := &stubGenerator{replies: []string{"no json"}, errs: []error{nil, boom}}

	res, err := New(gen, nil, zap.NewNop(), 0).Extract(context.Background(), Strict("p"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "no json", res.Raw)
}

func TestExtractRequiresBuilder(t *testing.T) {
	t.Parallel()

	_, err := New(&stubGenerator{}, nil, nil, 0).Extract(context.Background(), nil)
	require.Error(t, err)

	var nilExtractor *Extractor
	_, err = nilExtractor.Extract(context.Background(), Strict("p"))
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{name: "bare object", raw: `{"a": 1}`, wantKey: "a"},
		{name: "fenced", raw: "```json\n{\"b\": true}\n```", wantKey: "b"},
		{name: "prose around", raw: "Here you go: {\"c\": \"x\"} Thanks!", wantKey: "c"},
		{name: "nested braces", raw: `{"d": {"e": 1}}`, wantKey: "d"},
		{name: "no braces", raw: "plain text", wantErr: true},
		{name: "reversed braces", raw: "} oops {", wantErr: true},
		{name: "two objects", raw: `{"a":1} and {"b":2}`, wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "fence without newline", raw: "```json {\"f\": 1}```", wantKey: "f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, data, tt.wantKey)
		})
	}
}

func TestParseKeepsBackticksInsideValues(t *testing.T) {
	t.Parallel()

	data, err := Parse("```json\n{\"code\": \"use ```go``` blocks\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "use ```go``` blocks", data["code"])
}

func TestStrict(t *testing.T) {
	t.Parallel()

	build := Strict("base")
	assert.Equal(t, "base", build(0))
	assert.True(t, strings.HasPrefix(build(1), StrictDirective))
	assert.True(t, strings.HasSuffix(build(1), "base"))
}
