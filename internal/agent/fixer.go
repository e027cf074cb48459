package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atelierhq/veneer/internal/repair"
)

const fixerSystemPrompt = `You are a senior React/TypeScript engineer fixing compile and lint errors
in a generated component. Return the complete corrected file inside a single
fenced code block. Do not add commentary outside the code block. Preserve the
component's exported name and public props.`

// ClaudeFixer implements the repair capability with a direct API call:
// read the artifact, ask the model for a corrected file, write it back.
type ClaudeFixer struct {
	client    *Client
	maxTokens int64
}

// NewClaudeFixer creates a fixer backed by the given client.
func NewClaudeFixer(client *Client) *ClaudeFixer {
	return &ClaudeFixer{client: client, maxTokens: 8192}
}

// AttemptFix asks the model to rewrite the artifact so the reported issues
// are resolved. Wrote is false when the response contains no usable file.
func (f *ClaudeFixer) AttemptFix(ctx context.Context, req repair.FixRequest) (repair.FixResult, error) {
	path := filepath.Join(req.Root, req.Artifact.StoragePath)
	content, err := os.ReadFile(path)
	if err != nil {
		return repair.FixResult{}, fmt.Errorf("read artifact %s: %w", req.Artifact.Name, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Component %s (%s) at %s fails validation.\n\n", req.Artifact.Name, req.Artifact.Kind, req.Artifact.StoragePath)
	fmt.Fprintf(&sb, "Errors:\n%s\n\n", req.IssueText)
	if req.Guidance != "" {
		fmt.Fprintf(&sb, "Previous fixes kept producing the same error. Take a different approach:\n%s\n\n", req.Guidance)
	}
	fmt.Fprintf(&sb, "Current file content:\n```tsx\n%s\n```\n", string(content))

	response, err := f.client.Complete(ctx, fixerSystemPrompt, sb.String(), f.maxTokens)
	if err != nil {
		return repair.FixResult{}, err
	}

	fixed := ExtractCodeBlock(response)
	if fixed == "" {
		return repair.FixResult{Wrote: false}, nil
	}

	if err := os.WriteFile(path, []byte(fixed), 0644); err != nil {
		return repair.FixResult{}, fmt.Errorf("write artifact %s: %w", req.Artifact.Name, err)
	}
	return repair.FixResult{Wrote: true, Path: path}, nil
}

// Verify ClaudeFixer implements repair.Fixer at compile time.
var _ repair.Fixer = (*ClaudeFixer)(nil)

// codeFence matches the first fenced code block, with or without a language
// tag, across multiple lines.
var codeFence = regexp.MustCompile("(?s)```[a-zA-Z]*\n(.*?)```")

// ExtractCodeBlock pulls the contents of the first fenced code block out of
// a model response. If the response has no fence but looks like bare source
// (starts with an import or comment), the whole response is returned.
func ExtractCodeBlock(response string) string {
	if m := codeFence.FindStringSubmatch(response); m != nil {
		return strings.TrimRight(m[1], "\n") + "\n"
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "export ") {
		return trimmed + "\n"
	}
	return ""
}
