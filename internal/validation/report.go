package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// RenderReport formats the final validation outcome for the terminal.
// Every artifact still failing at exit is enumerated with its accumulated
// issues, distinguishing artifacts that were repaired and still fail from
// artifacts that never received a repair attempt.
func RenderReport(outcome *Outcome) string {
	var sb strings.Builder

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	if outcome.Passed {
		sb.WriteString(green.Sprintf("✓ validation passed"))
		sb.WriteString(fmt.Sprintf(" (attempt %d)\n", outcome.Attempt))
		return sb.String()
	}

	sb.WriteString(red.Sprintf("✗ validation failed"))
	sb.WriteString(fmt.Sprintf(" — %d artifact(s) still failing after attempt %d\n\n",
		len(outcome.Failures), outcome.Attempt))

	names := make([]string, 0, len(outcome.Failures))
	for name := range outcome.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec := outcome.Failures[name]
		status := "never attempted repair"
		if outcome.Attempted[name] {
			status = "repair attempted, still failing"
		}
		sb.WriteString(yellow.Sprintf("  %s", name))
		sb.WriteString(fmt.Sprintf(" (%s, %s) — %s\n", rec.ArtifactKind, rec.ArtifactPath, status))
		for _, issue := range rec.Issues {
			sb.WriteString(fmt.Sprintf("    %s\n", issue.String()))
		}
	}

	return sb.String()
}
