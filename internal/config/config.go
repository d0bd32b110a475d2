package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderSettings holds the per-provider knobs: credential, endpoint,
// cache expiry, and the minimum spacing between call starts.
type ProviderSettings struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MinCallInterval time.Duration `mapstructure:"min_call_interval"`
}

// Config holds all configuration for the quote resolver.
//
// Provider credentials are optional: a missing key simply disables that
// provider for the run. Everything else is validated at startup and
// fails fast when malformed.
type Config struct {
	Yahoo        ProviderSettings `mapstructure:"yahoo"`
	Finnhub      ProviderSettings `mapstructure:"finnhub"`
	AlphaVantage ProviderSettings `mapstructure:"alphavantage"`
	Marketstack  ProviderSettings `mapstructure:"marketstack"`

	// CacheDir holds both the per-provider cache entries and the daily
	// snapshot files.
	CacheDir string `mapstructure:"cache_dir"`
	// StaticDataFile optionally replaces the bundled reference dataset.
	StaticDataFile        string        `mapstructure:"static_data_file"`
	SnapshotRetentionDays int           `mapstructure:"snapshot_retention_days"`
	WorkerPoolSize        int           `mapstructure:"worker_pool_size"`
	PerTickerTimeout      time.Duration `mapstructure:"per_ticker_timeout"`

	// Watchlist is resolved when no tickers are given on the command
	// line, and refreshed on RefreshCron in watch mode.
	Watchlist   []string `mapstructure:"watchlist"`
	RefreshCron string   `mapstructure:"refresh_cron"`
	PruneCron   string   `mapstructure:"prune_cron"`
}

// MinCallIntervals returns the provider-name to interval mapping the
// rate limiter is built from.
func (c *Config) MinCallIntervals() map[string]time.Duration {
	return map[string]time.Duration{
		"yahoo":        c.Yahoo.MinCallInterval,
		"finnhub":      c.Finnhub.MinCallInterval,
		"alphavantage": c.AlphaVantage.MinCallInterval,
		"marketstack":  c.Marketstack.MinCallInterval,
	}
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables:
//   - FINNHUB_API_KEY, ALPHAVANTAGE_API_KEY, MARKETSTACK_API_KEY
//     (all optional; an absent key disables that provider)
//   - FINNHUB_BASE_URL, ALPHAVANTAGE_BASE_URL, MARKETSTACK_BASE_URL
//     (optional, default to production)
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Free-tier defaults: intervals track each provider's documented
	// rate limit, TTLs track how quickly the data actually moves.
	v.SetDefault("yahoo.cache_ttl", time.Hour)
	v.SetDefault("yahoo.min_call_interval", 1500*time.Millisecond)
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.cache_ttl", 5*time.Minute)
	v.SetDefault("finnhub.min_call_interval", time.Second)
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co/query")
	v.SetDefault("alphavantage.cache_ttl", time.Hour)
	v.SetDefault("alphavantage.min_call_interval", 13*time.Second)
	v.SetDefault("marketstack.base_url", "https://api.marketstack.com/v1")
	v.SetDefault("marketstack.cache_ttl", time.Hour)
	v.SetDefault("marketstack.min_call_interval", 5*time.Second)

	v.SetDefault("cache_dir", ".cache")
	v.SetDefault("snapshot_retention_days", 7)
	v.SetDefault("worker_pool_size", 10)
	v.SetDefault("per_ticker_timeout", 30*time.Second)
	v.SetDefault("watchlist", []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"})
	v.SetDefault("refresh_cron", "@every 15m")
	v.SetDefault("prune_cron", "@daily")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.stock-advisor")
	_ = v.ReadInConfig()

	// Bind environment variables for credentials and base URLs
	v.BindEnv("finnhub.api_key", "FINNHUB_API_KEY")
	v.BindEnv("alphavantage.api_key", "ALPHAVANTAGE_API_KEY")
	v.BindEnv("marketstack.api_key", "MARKETSTACK_API_KEY")
	v.BindEnv("finnhub.base_url", "FINNHUB_BASE_URL")
	v.BindEnv("alphavantage.base_url", "ALPHAVANTAGE_BASE_URL")
	v.BindEnv("marketstack.base_url", "MARKETSTACK_BASE_URL")

	// Bind environment variables for resolver tuning
	v.BindEnv("cache_dir", "CACHE_DIR")
	v.BindEnv("static_data_file", "STATIC_DATA_FILE")
	v.BindEnv("snapshot_retention_days", "SNAPSHOT_RETENTION_DAYS")
	v.BindEnv("worker_pool_size", "WORKER_POOL_SIZE")
	v.BindEnv("per_ticker_timeout", "PER_TICKER_TIMEOUT")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.CacheDir == "" {
		problems = append(problems, "cache_dir must not be empty")
	}
	if c.SnapshotRetentionDays < 1 {
		problems = append(problems, "snapshot_retention_days must be at least 1")
	}
	if c.WorkerPoolSize < 1 {
		problems = append(problems, "worker_pool_size must be at least 1")
	}
	if c.PerTickerTimeout <= 0 {
		problems = append(problems, "per_ticker_timeout must be positive")
	}
	for name, p := range map[string]ProviderSettings{
		"yahoo":        c.Yahoo,
		"finnhub":      c.Finnhub,
		"alphavantage": c.AlphaVantage,
		"marketstack":  c.Marketstack,
	} {
		if p.CacheTTL < 0 {
			problems = append(problems, name+".cache_ttl must not be negative")
		}
		if p.MinCallInterval < 0 {
			problems = append(problems, name+".min_call_interval must not be negative")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
