package checks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atelierhq/veneer/internal/exec"
	"github.com/atelierhq/veneer/pkg/models"
)

// eslintFile is one entry of eslint's --format json output.
type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

// eslintMessage is one diagnostic within an eslint file entry.
type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Linter runs eslint with JSON output over the artifact tree.
type Linter struct {
	runner exec.CommandRunner
	bin    string
}

// NewLinter creates a Linter using the given eslint binary.
func NewLinter(runner exec.CommandRunner, bin string) *Linter {
	if bin == "" {
		bin = "eslint"
	}
	return &Linter{runner: runner, bin: bin}
}

// Check lints the whole artifact tree rooted at root and returns diagnostics
// keyed by the file path eslint reported them against. A linter that cannot
// run or produces unparseable output returns a *ToolError.
func (l *Linter) Check(ctx context.Context, root string) (map[string][]models.IssueRecord, error) {
	res, err := l.runner.Run(ctx, root, l.bin, "--format", "json", "--ext", ".ts,.tsx", ".")
	if err != nil {
		return nil, &ToolError{Tool: "lint", Err: fmt.Errorf("run %s: %w", l.bin, err)}
	}

	// eslint exits 1 when it finds errors and 2 on tool failure; either way
	// the stdout JSON is the source of truth, so parse first.
	var files []eslintFile
	if jsonErr := json.Unmarshal(res.Stdout, &files); jsonErr != nil {
		return nil, &ToolError{
			Tool:   "lint",
			Output: tail(string(res.Stdout) + string(res.Stderr)),
			Err:    fmt.Errorf("%s exited %d with unparseable output: %w", l.bin, res.ExitCode, jsonErr),
		}
	}

	issues := make(map[string][]models.IssueRecord)
	for _, f := range files {
		for _, m := range f.Messages {
			severity := models.SeverityWarning
			if m.Severity == 2 {
				severity = models.SeverityError
			}
			issues[f.FilePath] = append(issues[f.FilePath], models.IssueRecord{
				Line:     m.Line,
				Column:   m.Column,
				Message:  m.Message,
				RuleID:   m.RuleID,
				Severity: severity,
				Source:   models.SourceLint,
			})
		}
	}
	return issues, nil
}
