package agent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// noContext replaces {{CONTEXT}} when retrieval returned nothing.
const noContext = "(no internal context available)"

// Prompts is the catalogue of templates used by the pipelines.
type Prompts struct {
	ResumeExplanation   string `yaml:"resume_explanation"`
	InterviewGeneration string `yaml:"interview_generation"`
	InterviewEvaluation string `yaml:"interview_evaluation"`
	QAGrounded          string `yaml:"qa_grounded"`
	QAFallback          string `yaml:"qa_fallback"`
}

// DefaultPrompts returns the built-in catalogue.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts are invalid: %v", err))
	}
	return p
}

// LoadPrompts overlays the templates found in path onto the defaults. Keys
// missing from the file keep their built-in text.
func LoadPrompts(path string) (*Prompts, error) {
	p := DefaultPrompts()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts file %q: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("prompts file %q: %w", path, err)
	}
	return p, nil
}

// ParsePrompts decodes a complete catalogue.
func ParsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Prompts) validate() error {
	templates := map[string]string{
		"resume_explanation":   p.ResumeExplanation,
		"interview_generation": p.InterviewGeneration,
		"interview_evaluation": p.InterviewEvaluation,
		"qa_grounded":          p.QAGrounded,
		"qa_fallback":          p.QAFallback,
	}
	for name, text := range templates {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("prompt %q is empty", name)
		}
	}
	return nil
}

// render substitutes {{KEY}} placeholders. Unknown placeholders are left as is.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func contextOrPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return noContext
	}
	return text
}
