// Package config loads the typed application configuration for nekretnine:
// a viper-backed YAML file plus NEKRETNINE_-prefixed environment variable
// overrides, validated with go-playground/validator/v10. One typed,
// validated struct loaded once at startup instead of ad-hoc viper.Get*
// calls at call sites.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LLMProviderConfig configures one named LLM provider entry.
type LLMProviderConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=anthropic openai openrouter ollama"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
}

// SourceConfig configures one scrape source.
type SourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Enabled bool   `mapstructure:"enabled"`
}

// RateLimitConfig mirrors internal/ratelimit.Config for YAML/env overrides.
type RateLimitConfig struct {
	RequestsPerMinute    int           `mapstructure:"requests_per_minute" validate:"required,min=1"`
	DelayBetweenRequests time.Duration `mapstructure:"delay_between_requests"`
	DelayVariance        time.Duration `mapstructure:"delay_variance"`
	DetailDelay          time.Duration `mapstructure:"detail_delay"`
}

// PoolConfig mirrors internal/pool.Config for YAML/env overrides.
type PoolConfig struct {
	MaxSessions    int           `mapstructure:"max_sessions" validate:"required,min=1"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AcquireWait    time.Duration `mapstructure:"acquire_wait"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

// FetcherConfig selects and configures the pooled fetch-session type. Mode
// "static" fetches plain HTML; "dynamic" drives a headless browser for
// sources that render listings client-side.
type FetcherConfig struct {
	Mode           string `mapstructure:"mode" validate:"omitempty,oneof=static dynamic"`
	UserAgent      string `mapstructure:"user_agent"`
	ViewportWidth  int    `mapstructure:"viewport_width" validate:"min=0"`
	ViewportHeight int    `mapstructure:"viewport_height" validate:"min=0"`
	Locale         string `mapstructure:"locale"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr       string `mapstructure:"addr" validate:"required"`
	AdminToken string `mapstructure:"admin_token"`
}

// Config is the full application configuration.
type Config struct {
	Debug bool `mapstructure:"debug"`
	Quiet bool `mapstructure:"quiet"`

	HTTP      HTTPConfig          `mapstructure:"http"`
	RateLimit RateLimitConfig     `mapstructure:"rate_limit"`
	Pool      PoolConfig          `mapstructure:"pool"`
	Fetcher   FetcherConfig       `mapstructure:"fetcher"`
	Providers []LLMProviderConfig `mapstructure:"providers" validate:"dive"`
	Sources   []SourceConfig      `mapstructure:"sources" validate:"dive"`

	StalenessDays int `mapstructure:"staleness_days" validate:"min=0"`

	EmbeddingProvider string `mapstructure:"embedding_provider" validate:"omitempty,oneof=openai"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
}

// Default returns the configuration's baked-in defaults, applied before the
// config file and environment are layered on top.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		RateLimit: RateLimitConfig{
			RequestsPerMinute:    20,
			DelayBetweenRequests: 2 * time.Second,
			DelayVariance:        500 * time.Millisecond,
			DetailDelay:          time.Second,
		},
		Pool: PoolConfig{
			MaxSessions:    4,
			IdleTimeout:    5 * time.Minute,
			AcquireWait:    100 * time.Millisecond,
			AcquireTimeout: 30 * time.Second,
			SweepInterval:  time.Minute,
		},
		Fetcher: FetcherConfig{
			Mode:           "static",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Locale:         "hr-HR",
		},
		StalenessDays:     30,
		EmbeddingProvider: "openai",
		EmbeddingModel:    "text-embedding-3-small",
	}
}

// Load reads configFile when non-empty, otherwise the first nekretnine.yaml
// found in $HOME or the working directory, overlays NEKRETNINE_-prefixed
// environment variables, and validates the result.
func Load(configFile string) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("http.addr", defaults.HTTP.Addr)
	v.SetDefault("rate_limit.requests_per_minute", defaults.RateLimit.RequestsPerMinute)
	v.SetDefault("rate_limit.delay_between_requests", defaults.RateLimit.DelayBetweenRequests)
	v.SetDefault("rate_limit.delay_variance", defaults.RateLimit.DelayVariance)
	v.SetDefault("rate_limit.detail_delay", defaults.RateLimit.DetailDelay)
	v.SetDefault("pool.max_sessions", defaults.Pool.MaxSessions)
	v.SetDefault("pool.idle_timeout", defaults.Pool.IdleTimeout)
	v.SetDefault("pool.acquire_wait", defaults.Pool.AcquireWait)
	v.SetDefault("pool.acquire_timeout", defaults.Pool.AcquireTimeout)
	v.SetDefault("pool.sweep_interval", defaults.Pool.SweepInterval)
	v.SetDefault("fetcher.mode", defaults.Fetcher.Mode)
	v.SetDefault("fetcher.viewport_width", defaults.Fetcher.ViewportWidth)
	v.SetDefault("fetcher.viewport_height", defaults.Fetcher.ViewportHeight)
	v.SetDefault("fetcher.locale", defaults.Fetcher.Locale)
	v.SetDefault("staleness_days", defaults.StalenessDays)
	v.SetDefault("embedding_provider", defaults.EmbeddingProvider)
	v.SetDefault("embedding_model", defaults.EmbeddingModel)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName("nekretnine")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("NEKRETNINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("http.admin_token", "NEKRETNINE_ADMIN_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Debug = v.GetBool("debug")
	cfg.Quiet = v.GetBool("quiet")

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// ResolveProvider picks the LLM provider to use: the first configured
// provider with a non-empty API key (ollama needs none), falling back to
// auto-detection from the common env vars when none are configured.
func (c Config) ResolveProvider() (name, apiKey, baseURL, model string) {
	for _, p := range c.Providers {
		if p.Provider == "ollama" || p.APIKey != "" {
			return p.Provider, p.APIKey, p.BaseURL, p.Model
		}
	}
	return detectProviderFromEnv()
}

func detectProviderFromEnv() (name, apiKey, baseURL, model string) {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return "openrouter", key, "", ""
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return "anthropic", key, "", ""
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return "openai", key, "", ""
	}
	return "ollama", "", "", ""
}
