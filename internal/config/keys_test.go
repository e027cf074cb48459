package config

import (
	"strings"
	"testing"
)

func TestResolveAPIKeyPrefersEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-from-config"

	key, src, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-ant-from-env" || src != KeySourceEnv {
		t.Errorf("key/src = %q/%q, want env value", key, src)
	}
}

func TestResolveAPIKeyFallsBackToConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-from-config"

	key, src, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-ant-from-config" || src != KeySourceFile {
		t.Errorf("key/src = %q/%q, want config value", key, src)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, src, err := ResolveAPIKey(&Config{})
	if err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
	if src != KeySourceNone {
		t.Errorf("src = %q, want %q", src, KeySourceNone)
	}
}

func TestResolveAPIKeyDanglingReference(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	// A ${VAR} reference that expands to nothing counts as unset.
	cfg := &Config{}
	cfg.Anthropic.APIKey = "${VENEER_UNSET_KEY_VAR}"

	if _, _, err := ResolveAPIKey(cfg); err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey for dangling reference", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	if err := ValidateAPIKey("sk-ant-" + strings.Repeat("x", 20)); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := ValidateAPIKey("not-a-key"); err == nil {
		t.Error("bad prefix accepted")
	}
	if err := ValidateAPIKey(""); err != ErrNoAPIKey {
		t.Errorf("empty key: err = %v, want ErrNoAPIKey", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	key := "sk-ant-REDACTED"
	masked := MaskAPIKey(key)
	if !strings.HasPrefix(masked, "sk-ant-") || !strings.HasSuffix(masked, "1234") {
		t.Errorf("MaskAPIKey() = %q", masked)
	}
	if strings.Contains(masked, "abcdefghijklmnop") {
		t.Errorf("MaskAPIKey() leaked key body: %q", masked)
	}
	if MaskAPIKey("") != "(not set)" {
		t.Errorf("empty key mask = %q", MaskAPIKey(""))
	}
}
