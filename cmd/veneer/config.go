package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelierhq/veneer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Veneer configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/veneer/config.yaml
Project-specific overrides can be placed in .veneer.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, src, _ := config.ResolveAPIKey(cfg)
	fmt.Printf("anthropic.api_key: %s (from %s)\n", config.MaskAPIKey(key), src)
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", orUnset(cfg.Anthropic.AWSRegion))
	fmt.Printf("anthropic.aws_profile: %s\n", orUnset(cfg.Anthropic.AWSProfile))
	fmt.Printf("validation.max_attempts: %d\n", cfg.Validation.MaxAttempts)
	fmt.Printf("validation.repair_turns: %d\n", cfg.Validation.RepairTurns)
	fmt.Printf("validation.repair_concurrency: %d\n", cfg.Validation.RepairConcurrency)
	fmt.Printf("validation.stuck_threshold: %d\n", cfg.Validation.StuckThreshold)
	fmt.Printf("tools.typecheck_bin: %s\n", cfg.Tools.TypecheckBin)
	fmt.Printf("tools.lint_bin: %s\n", cfg.Tools.LintBin)
	fmt.Printf("quality.enabled: %t\n", cfg.Quality.Enabled)
	fmt.Printf("quality.retries_failing_only: %t\n", cfg.Quality.RetriesFailingOnly)
	fmt.Printf("quality.max_artifacts: %d\n", cfg.Quality.MaxArtifacts)
	fmt.Printf("generation.max_tokens: %d\n", cfg.Generation.MaxTokens)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return orUnset(cfg.Anthropic.AWSRegion), nil
	case "anthropic.aws_profile":
		return orUnset(cfg.Anthropic.AWSProfile), nil
	case "validation.max_attempts":
		return strconv.Itoa(cfg.Validation.MaxAttempts), nil
	case "validation.repair_turns":
		return strconv.Itoa(cfg.Validation.RepairTurns), nil
	case "validation.repair_concurrency":
		return strconv.Itoa(cfg.Validation.RepairConcurrency), nil
	case "validation.stuck_threshold":
		return strconv.Itoa(cfg.Validation.StuckThreshold), nil
	case "tools.typecheck_bin":
		return cfg.Tools.TypecheckBin, nil
	case "tools.lint_bin":
		return cfg.Tools.LintBin, nil
	case "quality.enabled":
		return strconv.FormatBool(cfg.Quality.Enabled), nil
	case "quality.retries_failing_only":
		return strconv.FormatBool(cfg.Quality.RetriesFailingOnly), nil
	case "quality.max_artifacts":
		return strconv.Itoa(cfg.Quality.MaxArtifacts), nil
	case "generation.max_tokens":
		return strconv.FormatInt(cfg.Generation.MaxTokens, 10), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "validation.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_attempts: %w", err)
		}
		cfg.Validation.MaxAttempts = n
	case "validation.repair_turns":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for repair_turns: %w", err)
		}
		cfg.Validation.RepairTurns = n
	case "validation.repair_concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for repair_concurrency: %w", err)
		}
		cfg.Validation.RepairConcurrency = n
	case "validation.stuck_threshold":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for stuck_threshold: %w", err)
		}
		cfg.Validation.StuckThreshold = n
	case "tools.typecheck_bin":
		cfg.Tools.TypecheckBin = value
	case "tools.lint_bin":
		cfg.Tools.LintBin = value
	case "quality.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for quality.enabled: %w", err)
		}
		cfg.Quality.Enabled = b
	case "quality.retries_failing_only":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for retries_failing_only: %w", err)
		}
		cfg.Quality.RetriesFailingOnly = b
	case "quality.max_artifacts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_artifacts: %w", err)
		}
		cfg.Quality.MaxArtifacts = n
	case "generation.max_tokens":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for max_tokens: %w", err)
		}
		cfg.Generation.MaxTokens = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
