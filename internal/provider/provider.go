package provider

import (
	"context"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

// Provider is the core interface implemented by every upstream quote
// source. Each provider knows how to fetch and normalize market data
// for a single ticker symbol.
type Provider interface {
	// Name returns the provider identifier used for cache keys,
	// rate limiting, and logging.
	Name() string

	// Enabled reports whether the provider can be called at all.
	// A provider whose credential is not configured stays disabled
	// for the whole process run; this is not an error condition.
	Enabled() bool

	// Fetch retrieves the quote for a single ticker. Failures are
	// returned as a classified *Error so the caller can decide how
	// to degrade.
	Fetch(ctx context.Context, ticker string) (quote.Quote, error)
}
