package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atelierhq/veneer/internal/repair"
	"github.com/atelierhq/veneer/pkg/models"
)

const searcherSystemPrompt = `A code-fixing agent is stuck: repeated attempts to fix a React/TypeScript
component keep producing the same error. Suggest a structurally different
implementation approach that avoids the failing construct entirely. Answer
with 3-6 sentences of concrete guidance (no code).`

// ClaudeSearcher implements the alternative-approach search consulted when
// the repair sub-loop detects it is repeating the same error.
type ClaudeSearcher struct {
	client *Client
	root   string
}

// NewClaudeSearcher creates a searcher backed by the given client, reading
// artifact content from the given output root.
func NewClaudeSearcher(client *Client, root string) *ClaudeSearcher {
	return &ClaudeSearcher{client: client, root: root}
}

// SearchAlternative returns guidance for a different implementation strategy.
func (s *ClaudeSearcher) SearchAlternative(ctx context.Context, artifact models.Artifact, errorText string) (string, error) {
	var snippet string
	if content, err := os.ReadFile(filepath.Join(s.root, artifact.StoragePath)); err == nil {
		snippet = string(content)
		if len(snippet) > 4000 {
			snippet = snippet[:4000]
		}
	}

	user := fmt.Sprintf("Component %s (%s)\n\nPersistent error:\n%s\n\nCurrent code (may be truncated):\n%s",
		artifact.Name, artifact.Kind, errorText, snippet)
	return s.client.Complete(ctx, searcherSystemPrompt, user, 1024)
}

// Verify ClaudeSearcher implements repair.PatternSearcher at compile time.
var _ repair.PatternSearcher = (*ClaudeSearcher)(nil)
