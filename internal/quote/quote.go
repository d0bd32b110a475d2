package quote

import "time"

// Source identifies the tier that produced a Quote. Consumers use it to
// decide whether displayed data should be flagged as degraded.
type Source string

const (
	// SourceLive means the quote came straight from a provider call.
	SourceLive Source = "live"
	// SourceProviderCache means a still-valid disk cache entry was used.
	SourceProviderCache Source = "provider_cache"
	// SourceDailyCache means today's snapshot file supplied the quote.
	SourceDailyCache Source = "daily_cache"
	// SourceStatic means the bundled reference dataset supplied the quote.
	SourceStatic Source = "static"
	// SourceDemo means every data tier was empty and the quote is synthetic.
	SourceDemo Source = "demo"
)

// Degraded reports whether the source is neither live nor backed by a
// fresh provider cache entry.
func (s Source) Degraded() bool {
	return s != SourceLive && s != SourceProviderCache
}

// Quote is the normalized per-ticker market data record. Every Quote
// produced by the resolver carries a positive CurrentPrice, even in the
// demo case.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name,omitempty"`
	CurrentPrice  float64   `json:"current_price"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	Volume        int64     `json:"volume"`
	MarketCap     float64   `json:"market_cap"`
	PERatio       *float64  `json:"pe_ratio,omitempty"`
	ResolvedAt    time.Time `json:"resolved_at"`
	Source        Source    `json:"source"`
}
