package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// KeySource says where an API key was resolved from.
type KeySource string

const (
	KeySourceEnv  KeySource = "environment"
	KeySourceFile KeySource = "config file"
	KeySourceNone KeySource = "none"
)

// ResolveAPIKey returns the Anthropic API key and its source. A key exported
// in the shell always wins over the config files; ${VAR} references in the
// config value are expanded, and a reference that expands to nothing counts
// as unset.
func ResolveAPIKey(cfg *Config) (string, KeySource, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, KeySourceEnv, nil
	}

	if cfg != nil {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceFile, nil
		}
	}

	return "", KeySourceNone, ErrNoAPIKey
}

// ValidateAPIKey checks that a key looks like an Anthropic key. It is a
// format check only; the key is not verified against the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey renders a key safe for display, keeping the "sk-ant-" prefix
// and the last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
