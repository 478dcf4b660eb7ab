package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the full application configuration
type Config struct {
	App       AppConfig       `yaml:"app"`
	GitHub    GitHubConfig    `yaml:"github"`
	Worker    WorkerConfig    `yaml:"worker"`
	Cache     CacheConfig     `yaml:"cache"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Retention RetentionConfig `yaml:"retention"`
}

// AppConfig holds server-level settings
type AppConfig struct {
	Port         int    `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	LogFile      string `yaml:"log_file"`
}

// GitHubConfig holds diff source settings
type GitHubConfig struct {
	APIURL     string `yaml:"api_url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// WorkerConfig holds dispatcher and retry settings
type WorkerConfig struct {
	Count           int `yaml:"count"`
	MaxRetries      int `yaml:"max_retries"`
	RetryBaseMs     int `yaml:"retry_base_ms"`
	RetryMaxMs      int `yaml:"retry_max_ms"`
	PollIntervalMs  int `yaml:"poll_interval_ms"`
	StaleTimeoutSec int `yaml:"stale_timeout_sec"`
}

// CacheConfig bounds the in-memory result cache
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
	TTLSec     int `yaml:"ttl_sec"`
}

// AnalysisConfig holds rule thresholds
type AnalysisConfig struct {
	MaxLineLength int `yaml:"max_line_length"`
}

// OllamaConfig holds commentary enrichment settings
type OllamaConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetentionConfig controls janitor cleanup of finished tasks
type RetentionConfig struct {
	MaxAgeDays       int `yaml:"max_age_days"`
	SweepIntervalMin int `yaml:"sweep_interval_min"`
}

// LoadConfig reads and parses the YAML configuration file, then fills
// in defaults for anything left unset
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with working defaults
func (c *Config) ApplyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.DatabasePath == "" {
		c.App.DatabasePath = "review.db"
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = "https://api.github.com"
	}
	if c.GitHub.TimeoutSec == 0 {
		c.GitHub.TimeoutSec = 30
	}
	if c.Worker.Count == 0 {
		c.Worker.Count = 4
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
	if c.Worker.RetryBaseMs == 0 {
		c.Worker.RetryBaseMs = 500
	}
	if c.Worker.RetryMaxMs == 0 {
		c.Worker.RetryMaxMs = 30000
	}
	if c.Worker.PollIntervalMs == 0 {
		c.Worker.PollIntervalMs = 500
	}
	if c.Worker.StaleTimeoutSec == 0 {
		c.Worker.StaleTimeoutSec = 600
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Analysis.MaxLineLength == 0 {
		c.Analysis.MaxLineLength = 120
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3"
	}
	if c.Ollama.TimeoutSec == 0 {
		c.Ollama.TimeoutSec = 120
	}
	if c.Retention.MaxAgeDays == 0 {
		c.Retention.MaxAgeDays = 7
	}
	if c.Retention.SweepIntervalMin == 0 {
		c.Retention.SweepIntervalMin = 60
	}
}
