package llmclient

import "testing"

func TestExtractJSON_StripsMarkdownFences(t *testing.T) {
	input := "```json\n{\"skills\": [\"go\", \"sql\"]}\n```"
	got := ExtractJSON(input)
	want := `{"skills": ["go", "sql"]}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_IgnoresBracesInsideStrings(t *testing.T) {
	input := `noise before {"note": "uses {braces} inside a string"} noise after`
	got := ExtractJSON(input)
	want := `{"note": "uses {braces} inside a string"}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_NoObjectReturnsTrimmedInput(t *testing.T) {
	input := "  not json at all  "
	got := ExtractJSON(input)
	if got != "not json at all" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSON_HandlesEscapedQuotes(t *testing.T) {
	input := `{"quote": "she said \"hi\""}`
	got := ExtractJSON(input)
	if got != input {
		t.Fatalf("got %q, want %q", got, input)
	}
}
