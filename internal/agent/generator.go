package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atelierhq/veneer/internal/generate"
)

const generatorSystemPrompt = `You are a senior React/TypeScript engineer generating a component from a
design spec. Return the complete component file inside a single fenced code
block. Use functional components with typed props, strict TypeScript, and no
external UI libraries. Do not add commentary outside the code block.`

// ClaudeGenerator implements the generation capability with a direct API
// call per component.
type ClaudeGenerator struct {
	client    *Client
	maxTokens int64
}

// NewClaudeGenerator creates a generator backed by the given client.
func NewClaudeGenerator(client *Client, maxTokens int64) *ClaudeGenerator {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &ClaudeGenerator{client: client, maxTokens: maxTokens}
}

// Generate asks the model for the component's source text.
func (g *ClaudeGenerator) Generate(ctx context.Context, component generate.ComponentSpec, tokens generate.StyleTokens) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate the %s component %s.\n\n", component.Kind, component.Name)
	fmt.Fprintf(&sb, "Description: %s\n", component.Description)
	if len(component.Uses) > 0 {
		fmt.Fprintf(&sb, "It composes these existing components (import them by name from their sibling files): %s\n",
			strings.Join(component.Uses, ", "))
	}
	if len(tokens) > 0 {
		sb.WriteString("\nDesign tokens:\n")
		names := make([]string, 0, len(tokens))
		for name := range tokens {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s: %s\n", name, tokens[name])
		}
	}

	response, err := g.client.Complete(ctx, generatorSystemPrompt, sb.String(), g.maxTokens)
	if err != nil {
		return "", err
	}

	source := ExtractCodeBlock(response)
	if source == "" {
		return "", fmt.Errorf("response for %s contains no code block", component.Name)
	}
	return source, nil
}

// Verify ClaudeGenerator implements generate.Generator at compile time.
var _ generate.Generator = (*ClaudeGenerator)(nil)
