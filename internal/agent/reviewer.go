package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atelierhq/veneer/internal/review"
	"github.com/atelierhq/veneer/pkg/models"
)

const reviewerSystemPrompt = `You are reviewing a generated React/TypeScript component for quality:
accessibility attributes (aria-*, alt text, semantic elements), consistent
naming, and forbidden patterns (inline style objects, any-typed props,
dangerouslySetInnerHTML).

If the file already meets the bar, respond with exactly: OK

Otherwise respond with a bullet list of the changes you made, followed by the
complete improved file in a single fenced code block. Never change the
component's exported name or public props.`

// ClaudeReviewer implements the advisory quality-review capability.
// Its self-report is not trusted for correctness; the comprehensive check
// that follows every quality pass is.
type ClaudeReviewer struct {
	client    *Client
	maxTokens int64
}

// NewClaudeReviewer creates a reviewer backed by the given client.
func NewClaudeReviewer(client *Client) *ClaudeReviewer {
	return &ClaudeReviewer{client: client, maxTokens: 8192}
}

// Review asks the model to upgrade one artifact's style and structure
// compliance, writing the improved file in place when the model produced one.
func (r *ClaudeReviewer) Review(ctx context.Context, root string, artifact models.Artifact) (review.Result, error) {
	path := filepath.Join(root, artifact.StoragePath)
	content, err := os.ReadFile(path)
	if err != nil {
		return review.Result{}, fmt.Errorf("read artifact %s: %w", artifact.Name, err)
	}

	user := fmt.Sprintf("Component %s (%s):\n```tsx\n%s\n```\n", artifact.Name, artifact.Kind, string(content))
	response, err := r.client.Complete(ctx, reviewerSystemPrompt, user, r.maxTokens)
	if err != nil {
		return review.Result{}, err
	}

	if strings.TrimSpace(response) == "OK" {
		return review.Result{Improved: false}, nil
	}

	improved := ExtractCodeBlock(response)
	if improved == "" {
		// Commentary without a usable file: treat as a no-op review.
		return review.Result{Improved: false, Notes: parseNotes(response)}, nil
	}

	if err := os.WriteFile(path, []byte(improved), 0644); err != nil {
		return review.Result{}, fmt.Errorf("write artifact %s: %w", artifact.Name, err)
	}
	return review.Result{Improved: true, Notes: parseNotes(response)}, nil
}

// Verify ClaudeReviewer implements review.Reviewer at compile time.
var _ review.Reviewer = (*ClaudeReviewer)(nil)

// parseNotes extracts the bullet lines preceding the code block.
func parseNotes(response string) []string {
	var notes []string
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			notes = append(notes, strings.TrimSpace(trimmed[2:]))
		}
		if strings.HasPrefix(trimmed, "```") {
			break
		}
	}
	return notes
}
