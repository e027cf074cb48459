// Package checks invokes the type-check and lint toolchain over generated
// artifacts and aggregates their diagnostics into per-artifact failure records.
package checks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/atelierhq/veneer/internal/exec"
	"github.com/atelierhq/veneer/pkg/models"
)

// tscLine matches tsc's machine-readable diagnostic format:
//
//	path/File.tsx(12,5): error TS2304: Cannot find name 'Foo'.
var tscLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning) (TS\d+): (.+)$`)

// TypeChecker runs the TypeScript compiler in no-emit mode and parses its
// line-oriented diagnostic output.
type TypeChecker struct {
	runner exec.CommandRunner
	bin    string
}

// NewTypeChecker creates a TypeChecker using the given compiler binary
// (usually "tsc" or "node_modules/.bin/tsc").
func NewTypeChecker(runner exec.CommandRunner, bin string) *TypeChecker {
	if bin == "" {
		bin = "tsc"
	}
	return &TypeChecker{runner: runner, bin: bin}
}

// Check type-checks the whole artifact tree rooted at root and returns
// diagnostics keyed by the file path tsc reported them against.
// A compiler that cannot run at all returns a *ToolError.
func (t *TypeChecker) Check(ctx context.Context, root string) (map[string][]models.IssueRecord, error) {
	return t.run(ctx, root, "--noEmit", "--pretty", "false")
}

// CheckFile type-checks a single artifact file in isolation and returns only
// the diagnostics attributed to that file. Used by the repair sub-loop, which
// re-checks one artifact after every write.
func (t *TypeChecker) CheckFile(ctx context.Context, root, path string) ([]models.IssueRecord, error) {
	byFile, err := t.run(ctx, root, "--noEmit", "--pretty", "false", "--jsx", "react-jsx", path)
	if err != nil {
		return nil, err
	}
	return byFile[path], nil
}

func (t *TypeChecker) run(ctx context.Context, root string, args ...string) (map[string][]models.IssueRecord, error) {
	res, err := t.runner.Run(ctx, root, t.bin, args...)
	if err != nil {
		return nil, &ToolError{Tool: "typecheck", Err: fmt.Errorf("run %s: %w", t.bin, err)}
	}

	issues := parseTscOutput(string(res.Stdout) + string(res.Stderr))

	// A non-zero exit with no parseable diagnostics means the compiler
	// itself broke (bad tsconfig, OOM, crash). That is fatal for the run.
	if res.ExitCode != 0 && len(issues) == 0 {
		return nil, &ToolError{
			Tool:   "typecheck",
			Output: tail(string(res.Stdout) + string(res.Stderr)),
			Err:    fmt.Errorf("%s exited %d with unparseable output", t.bin, res.ExitCode),
		}
	}
	return issues, nil
}

// parseTscOutput extracts diagnostics from tsc's --pretty false output.
func parseTscOutput(output string) map[string][]models.IssueRecord {
	issues := make(map[string][]models.IssueRecord)
	for _, line := range strings.Split(output, "\n") {
		m := tscLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		severity := models.SeverityError
		if m[4] == "warning" {
			severity = models.SeverityWarning
		}
		issues[m[1]] = append(issues[m[1]], models.IssueRecord{
			Line:     lineNo,
			Column:   colNo,
			Message:  m[6],
			RuleID:   m[5],
			Severity: severity,
			Source:   models.SourceType,
		})
	}
	return issues
}

// tail truncates tool output for inclusion in error messages.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 500 {
		return "..." + s[len(s)-500:]
	}
	return s
}
