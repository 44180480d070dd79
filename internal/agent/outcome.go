package agent

import "github.com/lucienvoid/ai-hr-agent/internal/scoring"

// Outcome is the result of one dispatch. Every implementation marshals to a
// flat JSON object.
type Outcome interface {
	outcome()
}

// ErrorOutcome is the uniform failure envelope.
type ErrorOutcome struct {
	Error string `json:"error"`
}

// ScreeningOutcome reports a deterministic skill match plus its explanation.
type ScreeningOutcome struct {
	MatchPercentage float64                `json:"match_percentage"`
	Recommendation  scoring.Recommendation `json:"recommendation"`
	Explanation     string                 `json:"explanation"`
	MatchedSkills   []string               `json:"matched_skills"`
	MissingSkills   []string               `json:"missing_skills"`
	Reasoning       []string               `json:"reasoning"`
}

// Question is one generated interview question.
type Question struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Intent   string `json:"intent"`
}

type QuestionsOutcome struct {
	Questions []Question `json:"questions"`
	Reasoning []string   `json:"reasoning"`
}

type EvaluationOutcome struct {
	OverallScore int             `json:"overall_score"`
	Verdict      scoring.Verdict `json:"verdict"`
	Strengths    []string        `json:"strengths"`
	Weaknesses   []string        `json:"weaknesses"`
	Reasoning    []string        `json:"reasoning"`
}

// Confidence grades how well an answer is grounded.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Source names the path that produced an answer.
type Source string

const (
	SourceValidation  Source = "Validation"
	SourceGrounded    Source = "Vector DB + LLM"
	SourceNoRetrieval Source = "LLM (No Retrieval)"
)

type QAOutcome struct {
	Answer     string     `json:"answer"`
	Confidence Confidence `json:"confidence"`
	Source     Source     `json:"source"`
	Reasoning  []string   `json:"reasoning"`
}

func (ErrorOutcome) outcome()      {}
func (ScreeningOutcome) outcome()  {}
func (QuestionsOutcome) outcome()  {}
func (EvaluationOutcome) outcome() {}
func (QAOutcome) outcome()         {}
