package llmclient

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is one named system+user prompt pair with {{placeholder}}
// substitution. text/template is deliberately not used here: the user
// template is filled with untrusted résumé/job content, and a templating
// engine capable of executing actions is the wrong tool for plain
// string interpolation of LLM-bound text.
type PromptTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// PromptLibrary holds the named templates the pipeline and matching engine
// render before calling the chat endpoint.
type PromptLibrary struct {
	templates map[string]PromptTemplate
}

// Well-known template names, set by the prompts.yaml config file.
const (
	TemplateResumeAnalysis  = "resume-analysis"
	TemplateCandidateMatch  = "candidate-matching"
	TemplateSourceSelection = "source-selection"
)

// LoadPromptLibrary reads a YAML document mapping template name to
// {system, user} pairs from path.
func LoadPromptLibrary(path string) (*PromptLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	var templates map[string]PromptTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	return &PromptLibrary{templates: templates}, nil
}

// Render fills the named template's {{placeholder}} tokens with values and
// returns the resolved (system, user) prompt pair.
func (l *PromptLibrary) Render(name string, values map[string]string) (system string, user string, err error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt template %q", name)
	}

	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	replacer := strings.NewReplacer(pairs...)
	return replacer.Replace(tmpl.System), replacer.Replace(tmpl.User), nil
}
