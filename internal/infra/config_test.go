package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ARTIFY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("PORT", "")
	t.Setenv("CLIPDROP_BASE_URL", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Fatalf("ProviderTimeout = %s", cfg.ProviderTimeout)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0].Endpoint != "https://clipdrop-api.co/text-to-image/v1" {
		t.Fatalf("Providers mismatch: %#v", cfg.Providers)
	}
	if len(cfg.Fallbacks) != 2 || cfg.Fallbacks[0].Model != "flux" || cfg.Fallbacks[1].Model != "turbo" {
		t.Fatalf("Fallbacks mismatch: %#v", cfg.Fallbacks)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ARTIFY_CONFIG", "")
	t.Setenv("POLLINATIONS_BASE_URL", "http://localhost:9000/")
	t.Setenv("PATCH_WATERMARK_REGION", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SECRETS_FILE", "/etc/artify/secrets.toml")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Fallbacks[0].BaseURL != "http://localhost:9000" {
		t.Fatalf("fallback base = %q", cfg.Fallbacks[0].BaseURL)
	}
	if !cfg.PatchWatermarkRegion {
		t.Fatalf("PatchWatermarkRegion should be enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.SecretsFiles) != 1 || cfg.SecretsFiles[0] != "/etc/artify/secrets.toml" {
		t.Fatalf("SecretsFiles = %#v", cfg.SecretsFiles)
	}
}

func TestLoadConfigRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("ARTIFY_CONFIG", "")
	t.Setenv("FALLBACK_TIMEOUT_SECONDS", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for zero fallback timeout")
	}
}

func TestLoadConfigReadsProviderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[providers]]
name = "stability"
endpoint = "https://api.example.com/v1/generate"
header = "authorization"
secrets = ["STABILITY_KEY_A", "STABILITY_KEY_B"]

[[fallbacks]]
name = "local"
base_url = "http://127.0.0.1:7860"
timeout_seconds = 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ARTIFY_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0].Name != "stability" {
		t.Fatalf("Providers = %#v", cfg.Providers)
	}
	if got := cfg.Providers[0].Secrets; len(got) != 2 || got[1] != "STABILITY_KEY_B" {
		t.Fatalf("Secrets = %#v", got)
	}
	if len(cfg.Fallbacks) != 1 || cfg.Fallbacks[0].TimeoutSeconds != 5 {
		t.Fatalf("Fallbacks = %#v", cfg.Fallbacks)
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[providers]]
name = ""
endpoint = "not a url"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ARTIFY_CONFIG", path)
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}
}
