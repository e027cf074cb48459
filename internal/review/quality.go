// Package review applies the advisory quality pass: a second, independent
// repair-capability invocation that upgrades style and structural compliance
// (accessibility attributes, naming, forbidden patterns) across artifacts.
package review

import (
	"context"

	"github.com/atelierhq/veneer/pkg/models"
)

// Result is the self-reported outcome of reviewing one artifact.
// Self-reports are advisory only: correctness is re-established by the
// comprehensive check that always follows a review pass, never trusted from
// the reviewer.
type Result struct {
	// Improved indicates the reviewer rewrote the artifact.
	Improved bool
	// Notes lists the changes or observations the reviewer reported.
	Notes []string
}

// Reviewer is the external quality-review capability for a single artifact.
type Reviewer interface {
	Review(ctx context.Context, root string, artifact models.Artifact) (Result, error)
}

// Policy controls which artifacts the quality pass visits.
type Policy struct {
	// Enabled turns the pass on or off entirely.
	Enabled bool
	// RetriesReviewFailingOnly reviews only previously-failing artifacts on
	// retry iterations (iteration > 1) instead of the full set. This mirrors
	// the reference behavior; it is an unproven optimization, so it lives
	// behind this flag rather than being hard-coded.
	RetriesReviewFailingOnly bool
	// MaxArtifacts caps how many artifacts one pass may visit. 0 = no cap.
	MaxArtifacts int
}

// DefaultPolicy returns the reference behavior: enabled, full set on the
// first iteration, failing-only on retries, capped at 50 artifacts per pass.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:                  true,
		RetriesReviewFailingOnly: true,
		MaxArtifacts:             50,
	}
}

// Pass runs the quality review over a selection of artifacts.
type Pass struct {
	reviewer Reviewer
	policy   Policy
	logf     func(format string, args ...interface{})
}

// NewPass creates a quality pass. logf may be nil.
func NewPass(reviewer Reviewer, policy Policy, logf func(string, ...interface{})) *Pass {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Pass{reviewer: reviewer, policy: policy, logf: logf}
}

// ReviewAll reviews the selected artifacts and returns per-artifact results.
// On the first iteration every artifact is reviewed; on retries the selection
// narrows to previously-failing artifacts when the policy says so. The pass
// is non-blocking: reviewer errors are logged and skipped, never fatal, and
// a reviewer that regresses an artifact is caught by the comprehensive check
// that follows.
func (p *Pass) ReviewAll(ctx context.Context, root string, artifacts []models.Artifact, iteration int, failing map[string]*models.FailureRecord) map[string]Result {
	results := make(map[string]Result)
	if !p.policy.Enabled || p.reviewer == nil {
		return results
	}

	selection := p.select_(artifacts, iteration, failing)
	for _, artifact := range selection {
		if ctx.Err() != nil {
			return results
		}
		res, err := p.reviewer.Review(ctx, root, artifact)
		if err != nil {
			p.logf("quality review %s: %v (skipped)", artifact.Name, err)
			continue
		}
		results[artifact.Name] = res
		if res.Improved {
			p.logf("quality review %s: improved (%d note(s))", artifact.Name, len(res.Notes))
		}
	}
	return results
}

// select_ applies the policy's scope and cap.
func (p *Pass) select_(artifacts []models.Artifact, iteration int, failing map[string]*models.FailureRecord) []models.Artifact {
	selection := artifacts
	if iteration > 1 && p.policy.RetriesReviewFailingOnly {
		narrowed := make([]models.Artifact, 0, len(failing))
		for _, a := range artifacts {
			if _, ok := failing[a.Name]; ok {
				narrowed = append(narrowed, a)
			}
		}
		selection = narrowed
	}
	if p.policy.MaxArtifacts > 0 && len(selection) > p.policy.MaxArtifacts {
		selection = selection[:p.policy.MaxArtifacts]
	}
	return selection
}
