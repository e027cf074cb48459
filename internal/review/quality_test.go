package review

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/veneer/pkg/models"
)

type recordingReviewer struct {
	reviewed []string
	err      error
}

func (r *recordingReviewer) Review(ctx context.Context, root string, artifact models.Artifact) (Result, error) {
	r.reviewed = append(r.reviewed, artifact.Name)
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{Improved: true, Notes: []string{"added aria-label"}}, nil
}

func artifacts(names ...string) []models.Artifact {
	out := make([]models.Artifact, 0, len(names))
	for _, n := range names {
		out = append(out, models.Artifact{Name: n, Kind: models.KindLeafElement, StoragePath: "components/" + n + ".tsx"})
	}
	return out
}

func TestFirstIterationReviewsAllArtifacts(t *testing.T) {
	reviewer := &recordingReviewer{}
	pass := NewPass(reviewer, DefaultPolicy(), nil)

	failing := map[string]*models.FailureRecord{"Button": {ArtifactName: "Button"}}
	results := pass.ReviewAll(context.Background(), "/out", artifacts("Button", "Card", "Nav"), 1, failing)

	if len(reviewer.reviewed) != 3 {
		t.Errorf("reviewed %v, want all 3 artifacts on first iteration", reviewer.reviewed)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestRetriesReviewOnlyFailingArtifacts(t *testing.T) {
	reviewer := &recordingReviewer{}
	pass := NewPass(reviewer, DefaultPolicy(), nil)

	failing := map[string]*models.FailureRecord{"Card": {ArtifactName: "Card"}}
	pass.ReviewAll(context.Background(), "/out", artifacts("Button", "Card", "Nav"), 2, failing)

	if len(reviewer.reviewed) != 1 || reviewer.reviewed[0] != "Card" {
		t.Errorf("reviewed %v, want only the failing artifact on retry", reviewer.reviewed)
	}
}

func TestRetryNarrowingCanBeDisabled(t *testing.T) {
	reviewer := &recordingReviewer{}
	policy := DefaultPolicy()
	policy.RetriesReviewFailingOnly = false
	pass := NewPass(reviewer, policy, nil)

	failing := map[string]*models.FailureRecord{"Card": {ArtifactName: "Card"}}
	pass.ReviewAll(context.Background(), "/out", artifacts("Button", "Card"), 3, failing)

	if len(reviewer.reviewed) != 2 {
		t.Errorf("reviewed %v, want full set with narrowing disabled", reviewer.reviewed)
	}
}

func TestReviewerErrorsAreAdvisory(t *testing.T) {
	reviewer := &recordingReviewer{err: errors.New("api timeout")}
	pass := NewPass(reviewer, DefaultPolicy(), nil)

	results := pass.ReviewAll(context.Background(), "/out", artifacts("Button"), 1, nil)
	if len(results) != 0 {
		t.Errorf("errored reviews must be skipped, got %v", results)
	}
}

func TestMaxArtifactsCap(t *testing.T) {
	reviewer := &recordingReviewer{}
	policy := DefaultPolicy()
	policy.MaxArtifacts = 2
	pass := NewPass(reviewer, policy, nil)

	pass.ReviewAll(context.Background(), "/out", artifacts("A", "B", "C", "D"), 1, nil)
	if len(reviewer.reviewed) != 2 {
		t.Errorf("reviewed %v, want cap of 2", reviewer.reviewed)
	}
}

func TestDisabledPassReviewsNothing(t *testing.T) {
	reviewer := &recordingReviewer{}
	policy := DefaultPolicy()
	policy.Enabled = false
	pass := NewPass(reviewer, policy, nil)

	pass.ReviewAll(context.Background(), "/out", artifacts("A"), 1, nil)
	if len(reviewer.reviewed) != 0 {
		t.Errorf("disabled pass must not review, got %v", reviewer.reviewed)
	}
}
