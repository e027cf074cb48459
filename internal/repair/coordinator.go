// Package repair drives the bounded per-artifact repair sub-loop: invoke the
// external fix capability, re-check the single artifact, and repeat until it
// type-checks or the turn budget runs out.
package repair

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atelierhq/veneer/internal/bounded"
	"github.com/atelierhq/veneer/pkg/models"
)

// FixRequest carries everything the fix capability needs for one attempt.
type FixRequest struct {
	// Artifact is the artifact being repaired.
	Artifact models.Artifact
	// Root is the output root directory holding the artifact tree.
	Root string
	// IssueText is the rendered error list from the most recent check.
	IssueText string
	// Guidance is an optional alternative-approach hint injected after the
	// sub-loop detects it is stuck.
	Guidance string
}

// FixResult reports what the fix capability did.
type FixResult struct {
	// Wrote indicates whether new content was written to the artifact.
	Wrote bool
	// Path is the path that was written, if any.
	Path string
}

// Fixer is the external repair capability. It is a black box that may make
// multiple internal attempts; the coordinator only cares whether it wrote.
// Implementations: an LLM-backed fixer, a static rule engine, or a
// human-in-the-loop shim.
type Fixer interface {
	AttemptFix(ctx context.Context, req FixRequest) (FixResult, error)
}

// PatternSearcher finds an alternative implementation approach for an error
// the fixer keeps failing to resolve. Consulted only when the sub-loop
// detects it is repeating the same error.
type PatternSearcher interface {
	SearchAlternative(ctx context.Context, artifact models.Artifact, errorText string) (string, error)
}

// ArtifactChecker re-runs the type check on a single artifact.
// Implemented by checks.Runner.
type ArtifactChecker interface {
	CheckArtifact(ctx context.Context, root string, artifact models.Artifact) ([]models.IssueRecord, error)
}

// Result is the outcome of one artifact's repair sub-loop.
type Result struct {
	// ArtifactName is the repaired artifact.
	ArtifactName string
	// Success indicates the artifact type-checked in isolation when repair
	// returned. It is not a guarantee the comprehensive check still passes:
	// other artifacts may have changed in the same iteration.
	Success bool
	// Turns is the number of fix attempts consumed.
	Turns int
	// RemainingErrors holds the last error text when Success is false.
	RemainingErrors string
}

// Options configures a Coordinator.
type Options struct {
	// MaxTurns bounds the fix/re-check sub-loop per artifact. Default 12.
	MaxTurns int
	// StuckAfter is the number of consecutive identical error texts before
	// the coordinator switches strategy. Default 3.
	StuckAfter int
	// Concurrency is the number of artifacts repaired in parallel.
	// Repairs for distinct artifacts write only their own file, so parallel
	// repairs are safe; default 1 to match the reference behavior.
	Concurrency int
	// Logf receives progress lines. May be nil.
	Logf func(format string, args ...interface{})
}

// Coordinator runs the repair sub-loop for each failing artifact.
type Coordinator struct {
	fixer    Fixer
	checker  ArtifactChecker
	searcher PatternSearcher
	opts     Options
}

// NewCoordinator creates a Coordinator. searcher may be nil, in which case a
// stuck sub-loop simply keeps retrying until the budget runs out.
func NewCoordinator(fixer Fixer, checker ArtifactChecker, searcher PatternSearcher, opts Options) *Coordinator {
	if opts.MaxTurns < 1 {
		opts.MaxTurns = 12
	}
	if opts.StuckAfter < 1 {
		opts.StuckAfter = 3
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...interface{}) {}
	}
	return &Coordinator{fixer: fixer, checker: checker, searcher: searcher, opts: opts}
}

// Repair runs the bounded sub-loop for a single failing artifact.
// A failed repair is reported in the Result, not as an error; the returned
// error is reserved for fatal conditions (the check tool cannot run).
func (c *Coordinator) Repair(ctx context.Context, root string, rec *models.FailureRecord) (Result, error) {
	artifact := models.Artifact{
		Name:        rec.ArtifactName,
		Kind:        rec.ArtifactKind,
		StoragePath: rec.ArtifactPath,
	}

	issueText := rec.ErrorText()
	guidance := ""
	loop := bounded.New(c.opts.MaxTurns, c.opts.StuckAfter)

	for loop.Next() {
		if err := ctx.Err(); err != nil {
			return Result{ArtifactName: rec.ArtifactName, Turns: loop.Attempt()}, err
		}

		fixRes, err := c.fixer.AttemptFix(ctx, FixRequest{
			Artifact:  artifact,
			Root:      root,
			IssueText: issueText,
			Guidance:  guidance,
		})
		if err != nil {
			// The capability itself hiccupped (API error, timeout).
			// Count the turn and keep going.
			c.opts.Logf("repair %s turn %d: fix attempt error: %v", rec.ArtifactName, loop.Attempt(), err)
			loop.Observe("fix error: " + err.Error())
			continue
		}
		if !fixRes.Wrote {
			c.opts.Logf("repair %s turn %d: fixer declined to write", rec.ArtifactName, loop.Attempt())
			loop.Observe(issueText)
			continue
		}

		issues, err := c.checker.CheckArtifact(ctx, root, artifact)
		if err != nil {
			// Toolchain failure is fatal for the whole run.
			return Result{ArtifactName: rec.ArtifactName, Turns: loop.Attempt()}, err
		}

		issueText = renderErrors(issues)
		if issueText == "" {
			c.opts.Logf("repair %s: clean after %d turn(s)", rec.ArtifactName, loop.Attempt())
			return Result{ArtifactName: rec.ArtifactName, Success: true, Turns: loop.Attempt()}, nil
		}

		loop.Observe(issueText)
		if loop.Stuck() && c.searcher != nil {
			hint, searchErr := c.searcher.SearchAlternative(ctx, artifact, issueText)
			if searchErr != nil {
				c.opts.Logf("repair %s: alternative search failed: %v", rec.ArtifactName, searchErr)
			} else if hint != "" {
				c.opts.Logf("repair %s: stuck on same error, switching approach", rec.ArtifactName)
				guidance = hint
				loop.ResetStuck()
			}
		}
	}

	return Result{
		ArtifactName:    rec.ArtifactName,
		Success:         false,
		Turns:           loop.Attempt(),
		RemainingErrors: issueText,
	}, nil
}

// RepairAll runs Repair for every failing artifact. Individual failures do
// not stop the coordinator; it proceeds to the next artifact. Distinct
// artifacts may be repaired concurrently up to Options.Concurrency, which is
// safe because each repair writes only its own artifact file.
func (c *Coordinator) RepairAll(ctx context.Context, root string, failures map[string]*models.FailureRecord) (map[string]Result, error) {
	results := make(map[string]Result, len(failures))
	if len(failures) == 0 {
		return results, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		sem      = make(chan struct{}, c.opts.Concurrency)
	)

	for _, rec := range failures {
		wg.Add(1)
		go func(rec *models.FailureRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := c.Repair(ctx, root, rec)

			mu.Lock()
			defer mu.Unlock()
			results[rec.ArtifactName] = res
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("repair %s: %w", rec.ArtifactName, err)
			}
		}(rec)
	}
	wg.Wait()

	return results, firstErr
}

// renderErrors joins error-severity issues into the text fed back to the
// fixer and used for stuck detection.
func renderErrors(issues []models.IssueRecord) string {
	var lines []string
	for _, issue := range issues {
		if issue.Severity == models.SeverityError {
			lines = append(lines, issue.String())
		}
	}
	return strings.Join(lines, "\n")
}
