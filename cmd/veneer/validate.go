package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atelierhq/veneer/internal/config"
	"github.com/atelierhq/veneer/internal/registry"
)

var (
	validateTUI      bool
	validateAttempts int
)

var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Validate previously generated components",
	Long: `Run the validation loop over an existing output directory.

The directory must contain a ` + registry.ManifestName + ` manifest from an
earlier generate run. All registered artifacts are type-checked and
linted; failing ones are repaired in a bounded loop.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateTUI, "tui", false, "Show validation progress in a terminal UI")
	validateCmd.Flags().IntVar(&validateAttempts, "max-attempts", 0, "Override the validation attempt budget")
}

func runValidate(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if validateAttempts > 0 {
		cfg.Validation.MaxAttempts = validateAttempts
	}
	if err := CheckTool(cfg.Tools.TypecheckBin, "typescript"); err != nil {
		return err
	}
	if err := CheckTool(cfg.Tools.LintBin, "eslint"); err != nil {
		return err
	}

	reg, err := registry.Load(root)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	if reg.Len() == 0 {
		fmt.Println("Nothing to validate: manifest is empty.")
		return nil
	}

	client, err := createClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return validateRegistry(ctx, cfg, client, reg, "", validateTUI)
}
