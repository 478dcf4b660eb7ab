package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Parsing(t *testing.T) {
	content := `
app:
  port: 9090
  database_path: /tmp/review.db
github:
  api_url: https://github.example.com/api/v3
  timeout_sec: 10
worker:
  count: 2
  max_retries: 5
analysis:
  max_line_length: 100
ollama:
  enabled: true
  model: codellama
`
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Fatalf("Expected port 9090, got %d", cfg.App.Port)
	}
	if cfg.GitHub.APIURL != "https://github.example.com/api/v3" {
		t.Fatalf("Unexpected API URL: %s", cfg.GitHub.APIURL)
	}
	if cfg.Worker.Count != 2 || cfg.Worker.MaxRetries != 5 {
		t.Fatalf("Unexpected worker config: %+v", cfg.Worker)
	}
	if cfg.Analysis.MaxLineLength != 100 {
		t.Fatalf("Expected max line length 100, got %d", cfg.Analysis.MaxLineLength)
	}
	if !cfg.Ollama.Enabled || cfg.Ollama.Model != "codellama" {
		t.Fatalf("Unexpected ollama config: %+v", cfg.Ollama)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte("app:\n  port: 8081\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Fatalf("Expected default API URL, got %s", cfg.GitHub.APIURL)
	}
	if cfg.Worker.Count != 4 {
		t.Fatalf("Expected default worker count 4, got %d", cfg.Worker.Count)
	}
	if cfg.Worker.StaleTimeoutSec != 600 {
		t.Fatalf("Expected default stale timeout 600, got %d", cfg.Worker.StaleTimeoutSec)
	}
	if cfg.Analysis.MaxLineLength != 120 {
		t.Fatalf("Expected default max line length 120, got %d", cfg.Analysis.MaxLineLength)
	}
	if cfg.Retention.MaxAgeDays != 7 {
		t.Fatalf("Expected default retention 7 days, got %d", cfg.Retention.MaxAgeDays)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
