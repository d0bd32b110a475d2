package resolver

import (
	"time"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

// demoQuote synthesizes a deterministic placeholder so callers always
// get usable numbers even when every data tier is empty. The same
// ticker always yields the same figures.
func demoQuote(ticker string, now time.Time) quote.Quote {
	seed := 0
	for _, c := range ticker {
		seed += int(c)
	}

	price := float64(90 + seed%220)
	change := (float64(seed%25) - 8) / 2
	pe := float64(10 + seed%25)

	return quote.Quote{
		Ticker:        ticker,
		Name:          ticker + " (demo)",
		CurrentPrice:  price,
		Change:        change,
		PercentChange: change / price * 100,
		Volume:        15_000_000,
		MarketCap:     float64(40+seed%180) * 1e9,
		PERatio:       &pe,
		ResolvedAt:    now,
		Source:        quote.SourceDemo,
	}
}
