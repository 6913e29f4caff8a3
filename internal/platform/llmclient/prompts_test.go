package llmclient

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestPrompts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	contents := `
resume-analysis:
  system: "Extract structured fields from a resume."
  user: "Resume text:\n{{resumeText}}"
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write test prompts file: %v", err)
	}
	return path
}

func TestLoadPromptLibrary_RendersPlaceholders(t *testing.T) {
	path := writeTestPrompts(t)
	lib, err := LoadPromptLibrary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	system, user, err := lib.Render(TemplateResumeAnalysis, map[string]string{"resumeText": "Jane Doe, Go engineer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system != "Extract structured fields from a resume." {
		t.Fatalf("unexpected system prompt: %q", system)
	}
	if user != "Resume text:\nJane Doe, Go engineer" {
		t.Fatalf("unexpected user prompt: %q", user)
	}
}

func TestLoadPromptLibrary_UnknownTemplateErrors(t *testing.T) {
	path := writeTestPrompts(t)
	lib, err := LoadPromptLibrary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := lib.Render("does-not-exist", nil); err == nil {
		t.Fatal("expected an error for an unknown template name")
	}
}
