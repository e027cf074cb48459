package checks

import (
	"context"
	"fmt"
	"sync"

	"github.com/atelierhq/veneer/pkg/models"
)

// ToolError indicates the checking toolchain itself could not run: missing
// binary, crashed compiler, unparseable output. This is fatal for the whole
// validation run, distinct from "artifact has issues", and is never retried.
type ToolError struct {
	// Tool identifies which pass failed ("typecheck" or "lint").
	Tool string
	// Output is a truncated sample of the tool's raw output, if any.
	Output string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s tool failure: %v\noutput: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s tool failure: %v", e.Tool, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// Report holds the raw per-file diagnostics from one comprehensive check:
// both passes over the full artifact tree, keyed by reported file path.
type Report struct {
	// TypeIssues are tsc diagnostics keyed by file path.
	TypeIssues map[string][]models.IssueRecord
	// LintIssues are eslint diagnostics keyed by file path.
	LintIssues map[string][]models.IssueRecord
}

// Runner executes the comprehensive check: a type-check pass and a lint pass
// over the full artifact tree. It never mutates artifacts.
type Runner struct {
	types *TypeChecker
	lint  *Linter
	logf  func(format string, args ...interface{})
}

// NewRunner creates a check runner from the two tool wrappers.
// logf may be nil.
func NewRunner(types *TypeChecker, lint *Linter, logf func(string, ...interface{})) *Runner {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Runner{types: types, lint: lint, logf: logf}
}

// RunChecks runs both passes over the tree rooted at root. The two passes
// read the same artifact set read-only and share no state, so they run
// concurrently; results are merged only after both complete. A *ToolError
// from either pass fails the whole check.
func (r *Runner) RunChecks(ctx context.Context, root string) (*Report, error) {
	var (
		wg      sync.WaitGroup
		typeRes map[string][]models.IssueRecord
		lintRes map[string][]models.IssueRecord
		typeErr error
		lintErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		typeRes, typeErr = r.types.Check(ctx, root)
	}()
	go func() {
		defer wg.Done()
		lintRes, lintErr = r.lint.Check(ctx, root)
	}()
	wg.Wait()

	if typeErr != nil {
		return nil, typeErr
	}
	if lintErr != nil {
		return nil, lintErr
	}

	r.logf("comprehensive check: %d files with type issues, %d files with lint issues",
		len(typeRes), len(lintRes))

	return &Report{TypeIssues: typeRes, LintIssues: lintRes}, nil
}

// CheckArtifact re-runs the type check on a single artifact and returns its
// diagnostics. Used by the repair coordinator between fix attempts; lint is
// deliberately not re-run here, only at the comprehensive check.
func (r *Runner) CheckArtifact(ctx context.Context, root string, artifact models.Artifact) ([]models.IssueRecord, error) {
	return r.types.CheckFile(ctx, root, artifact.StoragePath)
}
