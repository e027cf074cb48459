package checks

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/atelierhq/veneer/internal/exec"
	"github.com/atelierhq/veneer/internal/registry"
	"github.com/atelierhq/veneer/pkg/models"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(t.TempDir())
	for _, a := range []models.Artifact{
		{Name: "Button", Kind: models.KindLeafElement, StoragePath: "components/Button.tsx"},
		{Name: "Card", Kind: models.KindComposite, StoragePath: "components/Card.tsx"},
	} {
		if err := reg.Add(a); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return reg
}

func TestAggregateTypeBeforeLint(t *testing.T) {
	reg := testRegistry(t)
	report := &Report{
		TypeIssues: map[string][]models.IssueRecord{
			"components/Button.tsx": {
				{Line: 5, Message: "type error", Severity: models.SeverityError, Source: models.SourceType},
			},
		},
		LintIssues: map[string][]models.IssueRecord{
			"components/Button.tsx": {
				{Line: 2, Message: "lint error", Severity: models.SeverityError, Source: models.SourceLint},
			},
		},
	}

	failures := Aggregate(report, reg)
	rec, ok := failures["Button"]
	if !ok {
		t.Fatal("expected a failure record for Button")
	}
	if len(rec.Issues) != 2 {
		t.Fatalf("record has %d issues, want 2", len(rec.Issues))
	}
	// Check-pass order: type first, lint second, regardless of line numbers.
	if rec.Issues[0].Source != models.SourceType || rec.Issues[1].Source != models.SourceLint {
		t.Errorf("issues out of check-pass order: %+v", rec.Issues)
	}
	if rec.ArtifactKind != models.KindLeafElement || rec.ArtifactPath != "components/Button.tsx" {
		t.Errorf("record metadata wrong: %+v", rec)
	}
}

// Diagnostics for files outside the registry must not appear in any record.
func TestAggregateDropsUntrackedDiagnostics(t *testing.T) {
	reg := testRegistry(t)
	report := &Report{
		TypeIssues: map[string][]models.IssueRecord{
			"lib/scaffold.ts": {
				{Line: 1, Message: "boom", Severity: models.SeverityError, Source: models.SourceType},
			},
		},
		LintIssues: map[string][]models.IssueRecord{},
	}

	failures := Aggregate(report, reg)
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %v", failures)
	}
}

func TestAggregateWarningsAloneAreNotFailures(t *testing.T) {
	reg := testRegistry(t)
	report := &Report{
		TypeIssues: map[string][]models.IssueRecord{},
		LintIssues: map[string][]models.IssueRecord{
			"components/Card.tsx": {
				{Line: 9, Message: "prefer const", Severity: models.SeverityWarning, Source: models.SourceLint},
			},
		},
	}

	failures := Aggregate(report, reg)
	if _, ok := failures["Card"]; ok {
		t.Error("warnings alone must not produce a failure record")
	}
}

// Aggregation is deterministic given fixed diagnostics.
func TestAggregateIdempotent(t *testing.T) {
	reg := testRegistry(t)
	report := &Report{
		TypeIssues: map[string][]models.IssueRecord{
			"components/Button.tsx": {
				{Line: 5, Message: "a", Severity: models.SeverityError, Source: models.SourceType},
			},
			"components/Card.tsx": {
				{Line: 1, Message: "b", Severity: models.SeverityError, Source: models.SourceType},
			},
		},
		LintIssues: map[string][]models.IssueRecord{
			"components/Button.tsx": {
				{Line: 8, Message: "c", Severity: models.SeverityError, Source: models.SourceLint},
			},
		},
	}

	first := Aggregate(report, reg)
	second := Aggregate(report, reg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRunChecksMergesBothPasses(t *testing.T) {
	runner := &fakeRunner{results: map[string]exec.Result{
		"tsc":    {Stdout: []byte("components/Button.tsx(1,1): error TS2304: Cannot find name 'X'.\n"), ExitCode: 2},
		"eslint": {Stdout: []byte(`[{"filePath":"components/Card.tsx","messages":[{"ruleId":"semi","severity":2,"message":"missing semicolon","line":4,"column":20}]}]`), ExitCode: 1},
	}}
	r := NewRunner(NewTypeChecker(runner, "tsc"), NewLinter(runner, "eslint"), nil)

	report, err := r.RunChecks(context.Background(), "/out")
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}
	if len(report.TypeIssues) != 1 || len(report.LintIssues) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRunChecksPropagatesToolError(t *testing.T) {
	runner := &fakeRunner{
		results: map[string]exec.Result{
			"eslint": {Stdout: []byte("[]"), ExitCode: 0},
		},
		errs: map[string]error{"tsc": errors.New("not installed")},
	}
	r := NewRunner(NewTypeChecker(runner, "tsc"), NewLinter(runner, "eslint"), nil)

	_, err := r.RunChecks(context.Background(), "/out")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
}
