// Package config handles application configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/spf13/viper"
)

// Failure policies for a curation run.
const (
	FailFast   = "fail_fast"
	BestEffort = "best_effort"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all PureStream data
	BaseDir string `mapstructure:"base_dir" validate:"required"`

	// Log level: debug, info, warn, error
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	LLM       LLMConfig       `mapstructure:"llm"`
	Curation  CurationConfig  `mapstructure:"curation"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LLMConfig holds LLM provider configuration for the recommendation source.
type LLMConfig struct {
	// API keys for different providers, read from env vars in Load()
	AnthropicAPIKey  string `mapstructure:"-"`
	OpenAIAPIKey     string `mapstructure:"-"`
	OpenRouterAPIKey string `mapstructure:"-"`

	// Default provider: "anthropic", "openai", "openrouter" (auto-detected if empty)
	DefaultProvider string `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai openrouter"`
	// Default model (provider-specific, uses sensible default if empty)
	DefaultModel string `mapstructure:"model"`
}

// CurationConfig controls a curation run.
type CurationConfig struct {
	Categories     []models.Category `mapstructure:"categories" validate:"min=1,dive"`
	CandidateLimit int               `mapstructure:"candidate_limit" validate:"gte=1,lte=100"`
	FailurePolicy  string            `mapstructure:"failure_policy" validate:"oneof=fail_fast best_effort"`

	// Requests per minute against the recommendation source.
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=1"`
	// Consecutive failures before the source circuit opens.
	BreakerThreshold uint32 `mapstructure:"breaker_threshold" validate:"gte=1"`
}

// CacheConfig holds per-profile catalog ceilings.
type CacheConfig struct {
	MaxMovies int `mapstructure:"max_movies" validate:"gte=1"`
	MaxShows  int `mapstructure:"max_shows" validate:"gte=1"`
}

// TelemetryConfig controls anonymous usage tracking.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:  DefaultBaseDir(),
		LogLevel: "info",
		Curation: CurationConfig{
			Categories:        models.DefaultCategories(),
			CandidateLimit:    20,
			FailurePolicy:     FailFast,
			RequestsPerMinute: 30,
			BreakerThreshold:  3,
		},
		Cache: CacheConfig{
			MaxMovies: 5000,
			MaxShows:  2000,
		},
		Telemetry: TelemetryConfig{Enabled: true},
	}
}

// Load reads configuration from the optional config file and environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if home := os.Getenv("PURESTREAM_HOME"); home != "" {
		cfg.BaseDir = home
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.BaseDir)
	v.AddConfigPath(DefaultConfigDir())

	v.SetEnvPrefix("PURESTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// A configured category list replaces the defaults instead of merging into them.
	cfg.Curation.Categories = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if len(cfg.Curation.Categories) == 0 {
		cfg.Curation.Categories = models.DefaultCategories()
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.OpenAIAPIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.LLM.AnthropicAPIKey = apiKey
	}
	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		cfg.LLM.OpenRouterAPIKey = apiKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindDefaults registers every scalar key so AutomaticEnv can override it
// even when no config file mentions the key.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("base_dir", cfg.BaseDir)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("llm.provider", cfg.LLM.DefaultProvider)
	v.SetDefault("llm.model", cfg.LLM.DefaultModel)
	v.SetDefault("curation.candidate_limit", cfg.Curation.CandidateLimit)
	v.SetDefault("curation.failure_policy", cfg.Curation.FailurePolicy)
	v.SetDefault("curation.requests_per_minute", cfg.Curation.RequestsPerMinute)
	v.SetDefault("curation.breaker_threshold", cfg.Curation.BreakerThreshold)
	v.SetDefault("cache.max_movies", cfg.Cache.MaxMovies)
	v.SetDefault("cache.max_shows", cfg.Cache.MaxShows)
	v.SetDefault("telemetry.enabled", cfg.Telemetry.Enabled)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	seen := make(map[string]bool, len(c.Curation.Categories))
	for _, cat := range c.Curation.Categories {
		if seen[cat.ID] {
			return fmt.Errorf("invalid config: duplicate category %q", cat.ID)
		}
		seen[cat.ID] = true
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	paths := GetPaths(cfg)
	dirs := []string{
		cfg.BaseDir,
		paths.Logs,
		paths.Locks,
		filepath.Dir(paths.Catalog),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
