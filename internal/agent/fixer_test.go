package agent

import (
	"strings"
	"testing"
)

func TestExtractCodeBlockFenced(t *testing.T) {
	response := "Here is the fix:\n```tsx\nexport const Button = () => <button />;\n```\nDone."
	got := ExtractCodeBlock(response)
	want := "export const Button = () => <button />;\n"
	if got != want {
		t.Errorf("ExtractCodeBlock() = %q, want %q", got, want)
	}
}

func TestExtractCodeBlockNoLanguageTag(t *testing.T) {
	response := "```\nimport React from 'react';\n```"
	got := ExtractCodeBlock(response)
	if !strings.Contains(got, "import React") {
		t.Errorf("ExtractCodeBlock() = %q", got)
	}
}

func TestExtractCodeBlockFirstOfMany(t *testing.T) {
	response := "```tsx\nfirst\n```\ntext\n```tsx\nsecond\n```"
	got := ExtractCodeBlock(response)
	if got != "first\n" {
		t.Errorf("ExtractCodeBlock() = %q, want first block only", got)
	}
}

func TestExtractCodeBlockBareSource(t *testing.T) {
	response := "import React from 'react';\n\nexport const X = () => null;"
	got := ExtractCodeBlock(response)
	if !strings.HasPrefix(got, "import React") {
		t.Errorf("bare source should be accepted, got %q", got)
	}
}

func TestExtractCodeBlockRejectsPlainProse(t *testing.T) {
	response := "I could not fix this component, the error is unclear."
	if got := ExtractCodeBlock(response); got != "" {
		t.Errorf("prose must not be written to the artifact, got %q", got)
	}
}

func TestParseNotesStopsAtCodeFence(t *testing.T) {
	response := "- added aria-label\n- removed inline style\n```tsx\n- not a note\n```"
	notes := parseNotes(response)
	if len(notes) != 2 {
		t.Fatalf("parseNotes() = %v, want 2 notes", notes)
	}
	if notes[0] != "added aria-label" || notes[1] != "removed inline style" {
		t.Errorf("parseNotes() = %v", notes)
	}
}
