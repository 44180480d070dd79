package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/extract"
	"github.com/lucienvoid/ai-hr-agent/internal/scoring"
)

const jobDescriptionRequired = "Job description required."

type questionSchema struct {
	Technical  []string `json:"technical"`
	Behavioral []string `json:"behavioral"`
}

type evaluationSchema struct {
	BaseScore  *float64 `json:"base_score" validate:"required"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Reasoning  string   `json:"reasoning"`
}

var errNoQuestions = errors.New("model returned no questions")

// GenerateQuestions asks for technical and behavioral questions tuned to the
// role level. Unusable model output degrades to an empty question list.
func (a *Agent) GenerateQuestions(ctx context.Context, jobDescription, roleLevel string) (Outcome, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return ErrorOutcome{Error: jobDescriptionRequired}, nil
	}

	level := normalizeRoleLevel(roleLevel)

	chunks, step := a.retrievalStep(ctx, jobDescription, interviewContextK, "interview context")
	reasoning := []string{step}

	prompt := render(a.prompts.InterviewGeneration, map[string]string{
		"ROLE_LEVEL":      string(level),
		"CONTEXT":         contextOrPlaceholder(chunks.Join("\n")),
		"JOB_DESCRIPTION": jobDescription,
	})

	res, err := a.extractor.Extract(ctx, extract.Strict(prompt))
	if err != nil {
		return nil, upstream("interview generation", err)
	}
	reasoning = append(reasoning, extractionSteps(res)...)

	var schema questionSchema
	res = extract.Decode(res, &schema)

	questions := make([]Question, 0, len(schema.Technical)+len(schema.Behavioral))
	if res.OK() {
		questions = appendQuestions(questions, "Technical", schema.Technical, level)
		questions = appendQuestions(questions, "Behavioral", schema.Behavioral, level)
		if len(questions) == 0 {
			res = extract.Result{Status: extract.SchemaInvalid, Raw: res.Raw, Attempts: res.Attempts, Cause: errNoQuestions}
		}
	}

	if !res.OK() {
		a.logger.Warn("interview generation degraded", zap.String("status", string(res.Status)), zap.Error(res.Cause))
		return QuestionsOutcome{
			Questions: []Question{},
			Reasoning: append(reasoning, degradedSteps(res, "Generation aborted safely")...),
		}, nil
	}

	reasoning = append(reasoning, fmt.Sprintf("Generated role-specific questions for %s using LLM", level))
	return QuestionsOutcome{Questions: questions, Reasoning: reasoning}, nil
}

func appendQuestions(dst []Question, category string, texts []string, level scoring.RoleLevel) []Question {
	intent := fmt.Sprintf("%s level %s assessment", level, strings.ToLower(category))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		dst = append(dst, Question{Category: category, Question: text, Intent: intent})
	}
	return dst
}

// EvaluateAnswer scores an answer against the Junior baseline and re-targets
// the score to the requested role level.
func (a *Agent) EvaluateAnswer(ctx context.Context, question, answer, jobDescription, roleLevel string) (Outcome, error) {
	if strings.TrimSpace(answer) == "" {
		return EvaluationOutcome{
			OverallScore: 0,
			Verdict:      scoring.Fail,
			Strengths:    []string{},
			Weaknesses:   []string{"No answer provided"},
			Reasoning:    []string{"Empty answer detected"},
		}, nil
	}

	level := normalizeRoleLevel(roleLevel)

	chunks, step := a.retrievalStep(ctx, jobDescription, evaluationContextK, "evaluation context")
	reasoning := []string{step}

	prompt := render(a.prompts.InterviewEvaluation, map[string]string{
		"CONTEXT":         contextOrPlaceholder(chunks.Join("\n")),
		"JOB_DESCRIPTION": jobDescription,
		"QUESTION":        question,
		"ANSWER":          answer,
	})

	res, err := a.extractor.Extract(ctx, extract.Strict(prompt))
	if err != nil {
		return nil, upstream("interview evaluation", err)
	}
	reasoning = append(reasoning, extractionSteps(res)...)

	var schema evaluationSchema
	res = extract.Decode(res, &schema)
	if !res.OK() {
		a.logger.Warn("interview evaluation degraded", zap.String("status", string(res.Status)), zap.Error(res.Cause))
		return EvaluationOutcome{
			OverallScore: 0,
			Verdict:      scoring.Fail,
			Strengths:    []string{},
			Weaknesses:   []string{"Invalid model output"},
			Reasoning:    append(reasoning, degradedSteps(res, "JSON parsing failed safely")...),
		}, nil
	}

	adj := scoring.Score(*schema.BaseScore, level)

	reasoning = append(reasoning,
		fmt.Sprintf("Evaluated absolute answer quality using LLM against the Junior baseline (base score %s)", formatPercent(adj.Base)),
		fmt.Sprintf("Adjusted score for %s role expectations (offset %d): %d, verdict %s", level, adj.Offset, adj.Adjusted, adj.Verdict),
	)
	if r := strings.TrimSpace(schema.Reasoning); r != "" {
		reasoning = append(reasoning, r)
	}

	return EvaluationOutcome{
		OverallScore: adj.Adjusted,
		Verdict:      adj.Verdict,
		Strengths:    nonNil(schema.Strengths),
		Weaknesses:   nonNil(schema.Weaknesses),
		Reasoning:    reasoning,
	}, nil
}

// degradedSteps explains why structured output was unusable.
func degradedSteps(res extract.Result, terminal string) []string {
	var why string
	switch res.Status {
	case extract.SchemaInvalid:
		why = "LLM output did not match the expected schema"
		if res.Cause != nil {
			why = fmt.Sprintf("%s: %v", why, res.Cause)
		}
	default:
		why = "LLM failed to produce valid JSON after retry"
	}
	return []string{why, terminal}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
