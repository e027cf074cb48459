// Package config handles configuration loading and management for Veneer.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for Veneer.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Validation ValidationConfig `mapstructure:"validation"`
	Tools      ToolsConfig      `mapstructure:"tools"`
	Quality    QualityConfig    `mapstructure:"quality"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// ValidationConfig holds the validation loop budgets.
type ValidationConfig struct {
	// MaxAttempts bounds full validation iterations.
	MaxAttempts int `mapstructure:"max_attempts"`
	// RepairTurns bounds fix attempts per artifact within one iteration.
	RepairTurns int `mapstructure:"repair_turns"`
	// RepairConcurrency is the number of artifacts repaired in parallel.
	RepairConcurrency int `mapstructure:"repair_concurrency"`
	// StuckThreshold is the number of identical consecutive errors before
	// an alternative approach is searched.
	StuckThreshold int `mapstructure:"stuck_threshold"`
}

// ToolsConfig holds the external checker binaries.
type ToolsConfig struct {
	TypecheckBin string `mapstructure:"typecheck_bin"`
	LintBin      string `mapstructure:"lint_bin"`
}

// QualityConfig holds quality pass settings.
type QualityConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// RetriesFailingOnly reviews only failing artifacts on retry iterations.
	RetriesFailingOnly bool `mapstructure:"retries_failing_only"`
	MaxArtifacts       int  `mapstructure:"max_artifacts"`
}

// GenerationConfig holds component generation settings.
type GenerationConfig struct {
	MaxTokens int64 `mapstructure:"max_tokens"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.veneer.yaml in current directory or parent)
// 3. User config (~/.config/veneer/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over user config
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("validation.max_attempts", cfg.Validation.MaxAttempts)
	v.Set("validation.repair_turns", cfg.Validation.RepairTurns)
	v.Set("validation.repair_concurrency", cfg.Validation.RepairConcurrency)
	v.Set("validation.stuck_threshold", cfg.Validation.StuckThreshold)
	v.Set("tools.typecheck_bin", cfg.Tools.TypecheckBin)
	v.Set("tools.lint_bin", cfg.Tools.LintBin)
	v.Set("quality.enabled", cfg.Quality.Enabled)
	v.Set("quality.retries_failing_only", cfg.Quality.RetriesFailingOnly)
	v.Set("quality.max_artifacts", cfg.Quality.MaxArtifacts)
	v.Set("generation.max_tokens", cfg.Generation.MaxTokens)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("validation.max_attempts", 3)
	v.SetDefault("validation.repair_turns", 12)
	v.SetDefault("validation.repair_concurrency", 1)
	v.SetDefault("validation.stuck_threshold", 3)

	v.SetDefault("tools.typecheck_bin", "tsc")
	v.SetDefault("tools.lint_bin", "eslint")

	v.SetDefault("quality.enabled", true)
	v.SetDefault("quality.retries_failing_only", true)
	v.SetDefault("quality.max_artifacts", 50)

	v.SetDefault("generation.max_tokens", 8192)
}

// getUserConfigDir returns the XDG config directory for Veneer.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "veneer")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "veneer")
	}
	return filepath.Join(home, ".config", "veneer")
}

// findProjectConfig searches for .veneer.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".veneer.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			MaxAttempts:       3,
			RepairTurns:       12,
			RepairConcurrency: 1,
			StuckThreshold:    3,
		},
		Tools: ToolsConfig{
			TypecheckBin: "tsc",
			LintBin:      "eslint",
		},
		Quality: QualityConfig{
			Enabled:            true,
			RetriesFailingOnly: true,
			MaxArtifacts:       50,
		},
		Generation: GenerationConfig{
			MaxTokens: 8192,
		},
	}
}
