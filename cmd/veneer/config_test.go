package main

import (
	"testing"
	"time"

	"github.com/atelierhq/veneer/internal/config"
)

func TestSetThenGetConfigValue(t *testing.T) {
	cfg := config.Default()

	cases := []struct {
		key, value string
	}{
		{"validation.max_attempts", "5"},
		{"validation.repair_concurrency", "4"},
		{"tools.typecheck_bin", "npx tsc"},
		{"quality.enabled", "false"},
		{"generation.max_tokens", "4096"},
	}
	for _, c := range cases {
		if err := setConfigValue(cfg, c.key, c.value); err != nil {
			t.Fatalf("setConfigValue(%s): %v", c.key, err)
		}
		got, err := getConfigValue(cfg, c.key)
		if err != nil {
			t.Fatalf("getConfigValue(%s): %v", c.key, err)
		}
		if got != c.value {
			t.Errorf("%s = %q, want %q", c.key, got, c.value)
		}
	}
}

func TestSetConfigValueRejectsBadInput(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "validation.max_attempts", "lots"); err == nil {
		t.Error("non-numeric max_attempts accepted")
	}
	if err := setConfigValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := getConfigValue(cfg, "no.such.key"); err == nil {
		t.Error("unknown key read accepted")
	}
}

func TestGetConfigValueMasksAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatal(err)
	}
	if got == cfg.Anthropic.APIKey {
		t.Error("api_key displayed unmasked")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
		{49 * time.Hour, "2d"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
