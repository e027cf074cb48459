package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/atelierhq/veneer/internal/agent"
	"github.com/atelierhq/veneer/internal/config"
	"github.com/atelierhq/veneer/internal/generate"
	"github.com/atelierhq/veneer/internal/registry"
	"github.com/atelierhq/veneer/internal/state"
	"github.com/atelierhq/veneer/internal/tui"
	"github.com/atelierhq/veneer/internal/validation"
	"github.com/atelierhq/veneer/internal/watch"
)

var (
	generateOut      string
	generateWatch    bool
	generateTUI      bool
	generateSkipRun  bool
	generateAttempts int
)

var generateCmd = &cobra.Command{
	Use:   "generate <design.yaml>",
	Short: "Generate components from a design spec and validate them",
	Long: `Generate React/TypeScript components from a YAML design spec.

Each component in the spec is generated via Claude, written under the
output directory, and registered in the artifact manifest. The generated
set is then validated: type-checked, linted, and repaired in a bounded
loop until everything passes or the attempt budget runs out.

Use --watch to re-run generation whenever the design file changes.
Use --tui to watch validation progress in a terminal UI.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "src/generated", "Output directory for generated components")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "Re-run when the design file changes")
	generateCmd.Flags().BoolVar(&generateTUI, "tui", false, "Show validation progress in a terminal UI")
	generateCmd.Flags().BoolVar(&generateSkipRun, "skip-validation", false, "Generate only, skip the validation loop")
	generateCmd.Flags().IntVar(&generateAttempts, "max-attempts", 0, "Override the validation attempt budget")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	designPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if generateAttempts > 0 {
		cfg.Validation.MaxAttempts = generateAttempts
	}
	if !generateSkipRun {
		if err := CheckTool(cfg.Tools.TypecheckBin, "typescript"); err != nil {
			return err
		}
		if err := CheckTool(cfg.Tools.LintBin, "eslint"); err != nil {
			return err
		}
	}

	client, err := createClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	once := func(ctx context.Context) error {
		return generateAndValidate(ctx, cfg, client, designPath)
	}

	if generateWatch {
		if err := once(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "initial run failed: %v\n", err)
		}
		w := watch.New(designPath, watch.Options{Logf: logf})
		err := w.Run(ctx, once)
		if err == context.Canceled {
			return nil
		}
		return err
	}

	return once(ctx)
}

// generateAndValidate runs one full generate-then-validate cycle and records
// the run in the project database.
func generateAndValidate(ctx context.Context, cfg *config.Config, client *agent.Client, designPath string) error {
	spec, err := generate.ParseDesignFile(designPath)
	if err != nil {
		return err
	}

	reg := registry.New(generateOut)
	gen := agent.NewClaudeGenerator(client, cfg.Generation.MaxTokens)

	logf("generating %d component(s) from %s", len(spec.Components), designPath)
	if err := generate.Run(ctx, gen, spec, reg); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	logf("generation complete: %d artifact(s) under %s", reg.Len(), generateOut)

	usage := client.Tracker().Usage()
	logf("tokens: %d in / %d out", usage.InputTokens, usage.OutputTokens)

	if generateSkipRun {
		return nil
	}
	return validateRegistry(ctx, cfg, client, reg, designPath, generateTUI)
}

// validateRegistry runs the validation loop over an already-populated
// registry, renders the report, and records the run.
func validateRegistry(ctx context.Context, cfg *config.Config, client *agent.Client, reg *registry.Registry, designPath string, useTUI bool) error {
	var events chan validation.Event
	var program *tea.Program
	tuiDone := make(chan struct{})

	if useTUI {
		events = make(chan validation.Event, 64)
		program = tea.NewProgram(tui.New(events))
		go func() {
			defer close(tuiDone)
			if _, err := program.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "tui: %v\n", err)
			}
		}()
	} else {
		close(tuiDone)
	}

	progress := logf
	if useTUI {
		// The TUI owns the terminal while it runs.
		progress = func(string, ...interface{}) {}
	}

	orch, _ := createOrchestrator(cfg, client, reg.Root(), progress, events)

	started := time.Now()
	runID := recordRunStart(designPath, reg.Root(), started)

	outcome, err := orch.RunValidation(ctx, nil, validation.Context{Root: reg.Root(), Registry: reg})

	if program != nil {
		done := tui.DoneMsg{Err: err}
		if outcome != nil {
			done.Passed = outcome.Passed
			done.Attempts = outcome.Attempt
			done.Failures = len(outcome.Failures)
		}
		program.Send(done)
		<-tuiDone
	}

	if err != nil {
		recordRunFinish(runID, nil)
		return fmt.Errorf("validation: %w", err)
	}

	recordRunFinish(runID, outcome)
	fmt.Print(validation.RenderReport(outcome))

	if !outcome.Passed {
		return fmt.Errorf("%d artifact(s) still failing after %d attempt(s)", len(outcome.Failures), outcome.Attempt)
	}
	return nil
}

// recordRunStart opens the project database and inserts a run row.
// Persistence failures are logged, never fatal.
func recordRunStart(designPath, outputDir string, started time.Time) string {
	db, err := openProjectDB()
	if err != nil {
		logf("run history unavailable: %v", err)
		return ""
	}
	defer db.Close()

	id, err := db.CreateRun(designPath, outputDir, started)
	if err != nil {
		logf("record run: %v", err)
		return ""
	}
	return id
}

// recordRunFinish stores the run outcome and any remaining failures.
func recordRunFinish(runID string, outcome *validation.Outcome) {
	if runID == "" {
		return
	}
	db, err := openProjectDB()
	if err != nil {
		return
	}
	defer db.Close()

	passed := false
	attempts := 0
	if outcome != nil {
		passed = outcome.Passed
		attempts = outcome.Attempt
	}
	if err := db.FinishRun(runID, time.Now(), passed, attempts); err != nil {
		logf("record run outcome: %v", err)
		return
	}

	if outcome == nil || len(outcome.Failures) == 0 {
		return
	}
	failures := make([]state.RunFailure, 0, len(outcome.Failures))
	for name, rec := range outcome.Failures {
		failures = append(failures, state.RunFailure{
			RunID:      runID,
			Artifact:   name,
			ErrorCount: rec.ErrorCount(),
			Detail:     rec.ErrorText(),
		})
	}
	if err := db.AddFailures(runID, failures); err != nil {
		logf("record run failures: %v", err)
	}
}

// openProjectDB opens and migrates the project-local run database.
func openProjectDB() (*state.DB, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	db, err := state.OpenProject(cwd)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// logf prints a progress line to stderr.
func logf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
