// Package config loads discovery engine configuration from the environment,
// with an optional YAML file providing defaults for anything not set there.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring provider kinds
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds all settings consumed by the discovery engine
type Config struct {
	PerplexityAPIKey string `yaml:"perplexity_api_key"` // required
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`  // optional
	OpenAIAPIKey     string `yaml:"openai_api_key"`     // optional

	// QualityThreshold is informational for this core: it is logged and
	// passed through to callers, never enforced during discovery.
	QualityThreshold float64 `yaml:"quality_threshold"`

	DBPath         string        `yaml:"db_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	LogLevel  string `yaml:"log_level"`
	PrettyLog bool   `yaml:"pretty_log"`
}

// ConfigError indicates a fatal configuration problem detected at
// construction time. It is the only error class the discovery engine
// surfaces to callers; everything downstream is absorbed per call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load builds a Config from the environment. If path is non-empty the YAML
// file there is read first and environment variables override it.
func Load(path string) (*Config, error) {
	cfg := &Config{
		QualityThreshold: 0.6,
		DBPath:           "eduscout.db",
		RequestTimeout:   30 * time.Second,
		LogLevel:         "info",
		PrettyLog:        true,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.PerplexityAPIKey = getenv("EDUSCOUT_PERPLEXITY_API_KEY", cfg.PerplexityAPIKey)
	cfg.AnthropicAPIKey = getenv("EDUSCOUT_ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.OpenAIAPIKey = getenv("EDUSCOUT_OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.QualityThreshold = getenvFloat("EDUSCOUT_QUALITY_THRESHOLD", cfg.QualityThreshold)
	cfg.DBPath = getenv("EDUSCOUT_DB_PATH", cfg.DBPath)
	cfg.RequestTimeout = getenvDuration("EDUSCOUT_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.LogLevel = getenv("EDUSCOUT_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = getenvBool("EDUSCOUT_PRETTY_LOG", cfg.PrettyLog)

	return cfg, nil
}

// Validate checks the fail-fast invariants. A missing search provider key is
// fatal; missing scoring keys only disable the LLM scoring tiers.
func (c *Config) Validate() error {
	if c.PerplexityAPIKey == "" {
		return &ConfigError{
			Field:  "perplexity_api_key",
			Reason: "search provider API key is required (set EDUSCOUT_PERPLEXITY_API_KEY)",
		}
	}
	if c.QualityThreshold < 0.0 || c.QualityThreshold > 1.0 {
		return &ConfigError{
			Field:  "quality_threshold",
			Reason: fmt.Sprintf("must be between 0.0 and 1.0 (got %g)", c.QualityThreshold),
		}
	}
	return nil
}

// ScoringProvider reports which LLM scoring provider the config selects.
// Anthropic wins when both keys are present. Empty string means no LLM
// scoring tier is available and the heuristic runs alone.
func (c *Config) ScoringProvider() string {
	if c.AnthropicAPIKey != "" {
		return ProviderAnthropic
	}
	if c.OpenAIAPIKey != "" {
		return ProviderOpenAI
	}
	return ""
}

// ScoringAPIKey returns the key for the selected scoring provider
func (c *Config) ScoringAPIKey() string {
	switch c.ScoringProvider() {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
