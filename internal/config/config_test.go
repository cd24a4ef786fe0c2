package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.EvaluationTimeout != 30*time.Second {
		t.Errorf("EvaluationTimeout = %v, want 30s", cfg.EvaluationTimeout)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL = %v, want 6h", cfg.CacheTTL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
service:
  port: 9100
  workers: 4
dependencies:
  postgres_url: postgres://localhost/risk
providers:
  bureau:
    url: https://bureau.example.com
    key: file-key
timeouts:
  cache_ttl_minutes: 90
policy_budget: 2500
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.DatabaseURL != "postgres://localhost/risk" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.BureauURL != "https://bureau.example.com" || cfg.BureauKey != "file-key" {
		t.Errorf("bureau = %q / %q", cfg.BureauURL, cfg.BureauKey)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v, want 90m", cfg.CacheTTL)
	}
	if cfg.PolicyBudget != 2500 {
		t.Errorf("PolicyBudget = %d, want 2500", cfg.PolicyBudget)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9200")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("Port = %d, want 9200", cfg.Port)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
