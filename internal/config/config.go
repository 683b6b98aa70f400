// Package config handles configuration loading for edgarintel.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Scraper   ScraperConfig   `mapstructure:"scraper"   yaml:"scraper"`
	Edgar     EdgarConfig     `mapstructure:"edgar"     yaml:"edgar"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ScraperConfig holds fetch pacing and discovery limits.
type ScraperConfig struct {
	UserAgent      string `mapstructure:"user_agent"       yaml:"user_agent"`       // SEC requires a contact UA
	RateLimit      int    `mapstructure:"rate_limit"       yaml:"rate_limit"`       // requests/second (SEC ceiling is 10)
	Burst          int    `mapstructure:"burst"            yaml:"burst"`            // token bucket capacity
	TimeoutSec     int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"`      // per-request HTTP timeout
	MaxRetries     int    `mapstructure:"max_retries"      yaml:"max_retries"`      // total attempts, including the first
	RetryBackoffMs int    `mapstructure:"retry_backoff_ms" yaml:"retry_backoff_ms"` // initial backoff, doubles per attempt
	Concurrency    int    `mapstructure:"concurrency"      yaml:"concurrency"`      // enrichment workers
	RegistryLimit  int    `mapstructure:"registry_limit"   yaml:"registry_limit"`   // max adviser leads from the registry
	FeedLimit      int    `mapstructure:"feed_limit"       yaml:"feed_limit"`       // max leads from the 13F feed
	CacheTTLSec    int    `mapstructure:"cache_ttl_sec"    yaml:"cache_ttl_sec"`    // registry/submissions cache TTL
}

// EdgarConfig holds the EDGAR endpoint bases. Tests point these at local
// servers; production never changes them.
type EdgarConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // registry, feed, archives
	DataURL string `mapstructure:"data_url" yaml:"data_url"` // submissions JSON API
}

// OutputConfig holds export destinations.
type OutputConfig struct {
	CSVPath string `mapstructure:"csv_path" yaml:"csv_path"`
}

// StoreConfig holds the local SQLite catalog settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
	Env   string `mapstructure:"env"   yaml:"env"`   // "prod" (JSON) or "dev" (console)
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Timeout returns the per-request HTTP timeout as a duration.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RetryBackoff returns the initial retry backoff as a duration.
func (s ScraperConfig) RetryBackoff() time.Duration {
	return time.Duration(s.RetryBackoffMs) * time.Millisecond
}

// CacheTTL returns the response cache TTL as a duration.
func (s ScraperConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSec) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.edgarintel/config.yaml (home directory)
//  3. /etc/edgarintel/config.yaml (system)
//
// Environment variables override config file values.
// Format: EDGARINTEL_<SECTION>_<KEY>, e.g., EDGARINTEL_SCRAPER_USER_AGENT
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".edgarintel"))
	v.AddConfigPath("/etc/edgarintel")

	// Environment variable settings
	v.SetEnvPrefix("EDGARINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("EDGARINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// DefaultUserAgent identifies the client when the operator has not
// configured a contact address. SEC fair-access policy wants a real
// contact here; status flags the default as a misconfiguration.
const DefaultUserAgent = "edgarintel/1.0 (github.com/seenimoa/edgarintel)"

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Scraper defaults (headroom under the SEC 10 req/s ceiling)
	v.SetDefault("scraper.user_agent", DefaultUserAgent)
	v.SetDefault("scraper.rate_limit", 8)
	v.SetDefault("scraper.burst", 8)
	v.SetDefault("scraper.timeout_sec", 30)
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.retry_backoff_ms", 1000)
	v.SetDefault("scraper.concurrency", 4)
	v.SetDefault("scraper.registry_limit", 150)
	v.SetDefault("scraper.feed_limit", 100)
	v.SetDefault("scraper.cache_ttl_sec", 900) // 15 minutes

	// EDGAR endpoints
	v.SetDefault("edgar.base_url", "https://www.sec.gov")
	v.SetDefault("edgar.data_url", "https://data.sec.gov")

	// Output defaults
	v.SetDefault("output.csv_path", "vc_database.csv")

	// Store defaults
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", "edgarintel.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.env", "prod")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
}

// overrideFromEnv explicitly reads operator-identity values from
// environment variables.
func overrideFromEnv(cfg *Config) {
	if ua := os.Getenv("EDGARINTEL_SCRAPER_USER_AGENT"); ua != "" {
		cfg.Scraper.UserAgent = ua
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
