package yahoo

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

const providerName = "yahoo"

// Client fetches quotes from Yahoo Finance via piquette/finance-go.
// Yahoo needs no credential, so the client is always enabled; it is
// still subject to the shared rate limiter because Yahoo throttles
// unauthenticated traffic aggressively.
type Client struct {
	get func(ticker string) (*finance.Equity, error)
}

// New creates a Yahoo Finance client.
func New() *Client {
	return &Client{get: equity.Get}
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// Enabled always reports true: no credential is required.
func (c *Client) Enabled() bool { return true }

// Fetch retrieves the current quote for a ticker. finance-go does not
// accept a context, so the call runs in its own goroutine and is
// abandoned when ctx expires.
func (c *Client) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
	type outcome struct {
		eq  *finance.Equity
		err error
	}

	ch := make(chan outcome, 1)
	go func() {
		eq, err := c.get(ticker)
		ch <- outcome{eq: eq, err: err}
	}()

	select {
	case <-ctx.Done():
		return quote.Quote{}, provider.NewTimeout(providerName, ctx.Err())
	case out := <-ch:
		if out.err != nil {
			return quote.Quote{}, provider.NewNetwork(providerName, out.err)
		}
		return normalize(ticker, out.eq)
	}
}

// normalize maps a finance-go equity onto the canonical Quote shape.
func normalize(ticker string, eq *finance.Equity) (quote.Quote, error) {
	if eq == nil || eq.RegularMarketPrice == 0 {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("no market price for %s", ticker))
	}

	q := quote.Quote{
		Ticker:        ticker,
		Name:          eq.ShortName,
		CurrentPrice:  eq.RegularMarketPrice,
		Change:        eq.RegularMarketChange,
		PercentChange: eq.RegularMarketChangePercent,
		Volume:        int64(eq.RegularMarketVolume),
		MarketCap:     float64(eq.MarketCap),
		ResolvedAt:    time.Now(),
	}
	if eq.TrailingPE != 0 {
		pe := eq.TrailingPE
		q.PERatio = &pe
	}
	return q, nil
}
