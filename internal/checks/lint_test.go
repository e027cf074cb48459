package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/veneer/internal/exec"
	"github.com/atelierhq/veneer/pkg/models"
)

const eslintOutput = `[
  {
    "filePath": "components/Button.tsx",
    "messages": [
      {"ruleId": "jsx-a11y/alt-text", "severity": 2, "message": "img elements must have an alt prop", "line": 14, "column": 7},
      {"ruleId": "no-unused-vars", "severity": 1, "message": "'theme' is defined but never used", "line": 2, "column": 10}
    ]
  },
  {
    "filePath": "components/Card.tsx",
    "messages": []
  }
]`

func TestLinterParsesJSONDiagnostics(t *testing.T) {
	runner := &fakeRunner{results: map[string]exec.Result{
		"eslint": {Stdout: []byte(eslintOutput), ExitCode: 1},
	}}
	l := NewLinter(runner, "eslint")

	issues, err := l.Check(context.Background(), "/out")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	button := issues["components/Button.tsx"]
	if len(button) != 2 {
		t.Fatalf("Button has %d issues, want 2", len(button))
	}
	if button[0].RuleID != "jsx-a11y/alt-text" || button[0].Severity != models.SeverityError {
		t.Errorf("unexpected first issue: %+v", button[0])
	}
	if button[1].Severity != models.SeverityWarning {
		t.Errorf("severity 1 should map to warning: %+v", button[1])
	}
	if button[0].Source != models.SourceLint {
		t.Errorf("Source = %q, want lint", button[0].Source)
	}

	// Files with no messages contribute no entries.
	if _, ok := issues["components/Card.tsx"]; ok {
		t.Error("expected no entry for clean file")
	}
}

func TestLinterToolErrorOnUnparseableOutput(t *testing.T) {
	runner := &fakeRunner{results: map[string]exec.Result{
		"eslint": {Stdout: []byte("Oops! Something went wrong!"), ExitCode: 2},
	}}
	l := NewLinter(runner, "eslint")

	_, err := l.Check(context.Background(), "/out")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
	if toolErr.Tool != "lint" {
		t.Errorf("ToolError.Tool = %q, want lint", toolErr.Tool)
	}
}

func TestLinterToolErrorOnStartFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"eslint": errors.New("no such file")}}
	l := NewLinter(runner, "eslint")

	_, err := l.Check(context.Background(), "/out")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
}
