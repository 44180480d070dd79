package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucienvoid/ai-hr-agent/internal/scoring"
)

const screeningInputRequired = "Resume and Job Description required."

// ScreenResume scores the skill overlap deterministically and only then asks
// the generation service to explain the already fixed recommendation.
func (a *Agent) ScreenResume(ctx context.Context, resumeText, jobDescription string) (Outcome, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return ErrorOutcome{Error: screeningInputRequired}, nil
	}

	screening := scoring.Screen(resumeText, jobDescription)

	reasoning := []string{
		fmt.Sprintf("Extracted %d skill(s) from job description", screening.JobSkills),
		fmt.Sprintf("Extracted %d skill(s) from resume", screening.ResumeSkills),
		fmt.Sprintf("Calculated overlap: %d of %d job skill(s) matched (%s%%), recommendation %s",
			len(screening.Matched), screening.JobSkills, formatPercent(screening.MatchPercentage), screening.Recommendation),
	}

	chunks, step := a.retrievalStep(ctx, jobDescription, screeningContextK, "HR evaluation context")
	reasoning = append(reasoning, step)

	prompt := render(a.prompts.ResumeExplanation, map[string]string{
		"CONTEXT":          contextOrPlaceholder(chunks.Join("\n")),
		"JOB_DESCRIPTION":  jobDescription,
		"RESUME":           resumeText,
		"MATCHED_SKILLS":   listOrNone(screening.Matched),
		"MISSING_SKILLS":   listOrNone(screening.Missing),
		"MATCH_PERCENTAGE": formatPercent(screening.MatchPercentage),
		"RECOMMENDATION":   string(screening.Recommendation),
	})

	explanation, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, upstream("resume screening explanation", err)
	}
	reasoning = append(reasoning, "Used LLM to explain the fixed recommendation")

	return ScreeningOutcome{
		MatchPercentage: screening.MatchPercentage,
		Recommendation:  screening.Recommendation,
		Explanation:     strings.TrimSpace(explanation),
		MatchedSkills:   screening.Matched,
		MissingSkills:   screening.Missing,
		Reasoning:       reasoning,
	}, nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
