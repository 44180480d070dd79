package agent

import (
	"context"
	"strings"
)

const emptyQuestionGuidance = "Please enter a valid HR-related question."

// AnswerQuestion answers from retrieved policy context when any is found and
// falls back to general HR knowledge otherwise. The source tag depends only on
// whether retrieval returned chunks.
func (a *Agent) AnswerQuestion(ctx context.Context, question string) (Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return QAOutcome{
			Answer:     emptyQuestionGuidance,
			Confidence: ConfidenceLow,
			Source:     SourceValidation,
			Reasoning:  []string{"Empty input provided"},
		}, nil
	}

	chunks, step := a.retrievalStep(ctx, question, qaContextK, "HR policy")

	if !chunks.Empty() {
		prompt := render(a.prompts.QAGrounded, map[string]string{
			"CONTEXT":  chunks.Join("\n\n"),
			"QUESTION": question,
		})

		answer, err := a.generator.GenerateContent(ctx, prompt)
		if err != nil {
			return nil, upstream("grounded answer", err)
		}

		return QAOutcome{
			Answer:     strings.TrimSpace(answer),
			Confidence: ConfidenceHigh,
			Source:     SourceGrounded,
			Reasoning: []string{
				step,
				"Used LLM to generate a grounded response based on retrieved context",
			},
		}, nil
	}

	prompt := render(a.prompts.QAFallback, map[string]string{"QUESTION": question})

	answer, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, upstream("fallback answer", err)
	}

	return QAOutcome{
		Answer:     strings.TrimSpace(answer),
		Confidence: ConfidenceMedium,
		Source:     SourceNoRetrieval,
		Reasoning: []string{
			step,
			"Used LLM with general HR domain knowledge as a safe fallback",
		},
	}, nil
}
