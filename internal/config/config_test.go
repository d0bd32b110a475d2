package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Finnhub.BaseURL", cfg.Finnhub.BaseURL, "https://finnhub.io/api/v1"},
		{"AlphaVantage.BaseURL", cfg.AlphaVantage.BaseURL, "https://www.alphavantage.co/query"},
		{"Marketstack.BaseURL", cfg.Marketstack.BaseURL, "https://api.marketstack.com/v1"},
		{"Finnhub.CacheTTL", cfg.Finnhub.CacheTTL, 5 * time.Minute},
		{"Yahoo.CacheTTL", cfg.Yahoo.CacheTTL, time.Hour},
		{"Yahoo.MinCallInterval", cfg.Yahoo.MinCallInterval, 1500 * time.Millisecond},
		{"AlphaVantage.MinCallInterval", cfg.AlphaVantage.MinCallInterval, 13 * time.Second},
		{"CacheDir", cfg.CacheDir, ".cache"},
		{"SnapshotRetentionDays", cfg.SnapshotRetentionDays, 7},
		{"WorkerPoolSize", cfg.WorkerPoolSize, 10},
		{"PerTickerTimeout", cfg.PerTickerTimeout, 30 * time.Second},
		{"RefreshCron", cfg.RefreshCron, "@every 15m"},
		{"PruneCron", cfg.PruneCron, "@daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if len(cfg.Watchlist) != 5 || cfg.Watchlist[0] != "AAPL" {
		t.Errorf("Watchlist = %v, want the five default tickers", cfg.Watchlist)
	}
}

func TestLoad_MissingCredentialsIsNotAnError(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "")
	t.Setenv("ALPHAVANTAGE_API_KEY", "")
	t.Setenv("MARKETSTACK_API_KEY", "")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "test_finnhub_key")
	t.Setenv("FINNHUB_BASE_URL", "http://localhost:9999")
	t.Setenv("CACHE_DIR", t.TempDir())
	t.Setenv("PER_TICKER_TIMEOUT", "45s")
	t.Setenv("WORKER_POOL_SIZE", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Finnhub.APIKey != "test_finnhub_key" {
		t.Errorf("Finnhub.APIKey = %q, want test_finnhub_key", cfg.Finnhub.APIKey)
	}
	if cfg.Finnhub.BaseURL != "http://localhost:9999" {
		t.Errorf("Finnhub.BaseURL = %q, want http://localhost:9999", cfg.Finnhub.BaseURL)
	}
	if cfg.PerTickerTimeout != 45*time.Second {
		t.Errorf("PerTickerTimeout = %v, want 45s", cfg.PerTickerTimeout)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Errorf("WorkerPoolSize = %d, want 4", cfg.WorkerPoolSize)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"zero workers", "WORKER_POOL_SIZE", "0"},
		{"negative retention", "SNAPSHOT_RETENTION_DAYS", "-1"},
		{"zero timeout", "PER_TICKER_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s expected error, got nil", tt.env, tt.value)
			}
		})
	}
}

func TestMinCallIntervals(t *testing.T) {
	cfg := &Config{
		Yahoo:        ProviderSettings{MinCallInterval: 1500 * time.Millisecond},
		Finnhub:      ProviderSettings{MinCallInterval: time.Second},
		AlphaVantage: ProviderSettings{MinCallInterval: 13 * time.Second},
		Marketstack:  ProviderSettings{MinCallInterval: 5 * time.Second},
	}

	intervals := cfg.MinCallIntervals()
	if len(intervals) != 4 {
		t.Fatalf("MinCallIntervals() returned %d entries, want 4", len(intervals))
	}
	if intervals["alphavantage"] != 13*time.Second {
		t.Errorf("alphavantage interval = %v, want 13s", intervals["alphavantage"])
	}
	if intervals["yahoo"] != 1500*time.Millisecond {
		t.Errorf("yahoo interval = %v, want 1.5s", intervals["yahoo"])
	}
}
