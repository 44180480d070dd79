package agent

import (
	"strings"

	"github.com/lucienvoid/ai-hr-agent/internal/scoring"
)

// Intent names one of the agent's capabilities.
type Intent string

const (
	ResumeScreening     Intent = "resume_screening"
	InterviewGeneration Intent = "interview_generation"
	InterviewEvaluation Intent = "interview_evaluation"
	HRQA                Intent = "hr_qa"
)

// Intents lists every routable intent in menu order.
var Intents = []Intent{ResumeScreening, InterviewGeneration, InterviewEvaluation, HRQA}

// Payload keys.
const (
	FieldResumeText     = "resume_text"
	FieldJobDescription = "job_description"
	FieldRoleLevel      = "role_level"
	FieldQuestion       = "question"
	FieldAnswer         = "answer"
)

// Fields returns the payload keys the intent reads, or nil for unknown intents.
func (i Intent) Fields() []string {
	switch i {
	case ResumeScreening:
		return []string{FieldResumeText, FieldJobDescription}
	case InterviewGeneration:
		return []string{FieldJobDescription, FieldRoleLevel}
	case InterviewEvaluation:
		return []string{FieldQuestion, FieldAnswer, FieldJobDescription, FieldRoleLevel}
	case HRQA:
		return []string{FieldQuestion}
	default:
		return nil
	}
}

// Title is a human label for menus.
func (i Intent) Title() string {
	switch i {
	case ResumeScreening:
		return "Resume screening"
	case InterviewGeneration:
		return "Interview question generation"
	case InterviewEvaluation:
		return "Interview answer evaluation"
	case HRQA:
		return "HR policy Q&A"
	default:
		return string(i)
	}
}

// normalizeRoleLevel maps blank input to Junior and known levels to their
// canonical spelling. Anything else is kept verbatim and scores with offset 0.
func normalizeRoleLevel(raw string) scoring.RoleLevel {
	if strings.TrimSpace(raw) == "" {
		return scoring.Junior
	}
	level, _ := scoring.ParseRoleLevel(raw)
	return level
}
