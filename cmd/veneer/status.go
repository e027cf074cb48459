package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierhq/veneer/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent validation runs",
	Long: `Display recent generate-and-validate runs for this project.

Shows each run's outcome, attempt count, and any artifacts that were
still failing when it ended.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 5, "Number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dbPath := state.ProjectDBPath(cwd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No run history. Run 'veneer generate <design.yaml>' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	runs, err := db.ListRuns(statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No run history. Run 'veneer generate <design.yaml>' to start.")
		return nil
	}

	fmt.Println("Recent Runs:")
	for _, r := range runs {
		displayRun(db, r)
	}
	return nil
}

func displayRun(db *state.DB, r state.Run) {
	outcome := "running"
	if r.FinishedAt != nil {
		if r.Passed {
			outcome = fmt.Sprintf("passed (attempt %d)", r.Attempts)
		} else {
			outcome = fmt.Sprintf("FAILED (attempt %d)", r.Attempts)
		}
	}

	elapsed := formatDuration(time.Since(r.StartedAt))
	fmt.Printf("  %s: %s, %s ago\n", r.ID[:8], outcome, elapsed)
	fmt.Printf("    %s -> %s\n", r.DesignPath, r.OutputDir)

	if r.FinishedAt != nil && !r.Passed {
		failures, err := db.ListFailures(r.ID)
		if err != nil {
			return
		}
		for _, f := range failures {
			fmt.Printf("    still failing: %s (%d error(s))\n", f.Artifact, f.ErrorCount)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
