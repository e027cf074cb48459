package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/atelierhq/veneer/internal/agent"
	"github.com/atelierhq/veneer/internal/checks"
	"github.com/atelierhq/veneer/internal/config"
	"github.com/atelierhq/veneer/internal/exec"
	"github.com/atelierhq/veneer/internal/repair"
	"github.com/atelierhq/veneer/internal/review"
	"github.com/atelierhq/veneer/internal/validation"
)

// createClient creates the Anthropic API client from configuration.
func createClient(cfg *config.Config) (*agent.Client, error) {
	apiKey := ""
	if !cfg.Anthropic.UseBedrock {
		key, _, err := config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	client, err := agent.NewClient(agent.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

// createOrchestrator wires the check runner, repair coordinator, and quality
// pass into a validation orchestrator rooted at the given output directory.
func createOrchestrator(cfg *config.Config, client *agent.Client, root string, logf func(string, ...interface{}), events chan<- validation.Event) (*validation.Orchestrator, *checks.Runner) {
	runner := exec.NewRunner()
	checker := checks.NewRunner(
		checks.NewTypeChecker(runner, cfg.Tools.TypecheckBin),
		checks.NewLinter(runner, cfg.Tools.LintBin),
		logf,
	)

	coordinator := repair.NewCoordinator(
		agent.NewClaudeFixer(client),
		checker,
		agent.NewClaudeSearcher(client, root),
		repair.Options{
			MaxTurns:    cfg.Validation.RepairTurns,
			StuckAfter:  cfg.Validation.StuckThreshold,
			Concurrency: cfg.Validation.RepairConcurrency,
			Logf:        logf,
		},
	)

	quality := review.NewPass(
		agent.NewClaudeReviewer(client),
		review.Policy{
			Enabled:                  cfg.Quality.Enabled,
			RetriesReviewFailingOnly: cfg.Quality.RetriesFailingOnly,
			MaxArtifacts:             cfg.Quality.MaxArtifacts,
		},
		logf,
	)

	orch := validation.NewOrchestrator(checker, coordinator, quality, validation.Options{
		MaxAttempts: cfg.Validation.MaxAttempts,
		Logf:        logf,
		Events:      events,
	})
	return orch, checker
}
