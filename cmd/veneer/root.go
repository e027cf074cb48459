package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// CheckTool verifies that a checker binary is available in PATH.
// Returns an error with installation instructions if not found.
func CheckTool(bin, pkg string) error {
	_, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%s not found in PATH\n\n"+
			"Veneer validates generated components with %s.\n\n"+
			"Install it with:\n"+
			"  npm install -g %s", bin, bin, pkg)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "veneer",
	Short: "Generate and validate React components from a design spec",
	Long: `Veneer turns a YAML design spec into React/TypeScript components via
Claude, then drives a bounded validate-and-repair loop until the whole
set compiles and lints cleanly or the attempt budget runs out.

Core capabilities:
- Generates components, icons, and modules from a design spec
- Type-checks and lints every generated artifact
- Repairs failing artifacts with a bounded agent sub-loop
- Applies an advisory quality pass for style and accessibility
- Records run history for later inspection`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
