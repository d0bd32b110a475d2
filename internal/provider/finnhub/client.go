package finnhub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

const providerName = "finnhub"

// QuoteResponse represents the Finnhub /quote payload.
type QuoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// Client fetches real-time quotes from Finnhub. The free tier allows 60
// calls per minute, so the client is throttled by the shared rate limiter.
type Client struct {
	apiKey string
	client *resty.Client
}

// New creates a Finnhub client. An empty apiKey leaves the client
// permanently disabled.
func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey: apiKey,
		client: provider.NewHTTPClient(baseURL),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Fetch retrieves the current quote for a ticker.
func (c *Client) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
	if !c.Enabled() {
		return quote.Quote{}, provider.NewCredentialMissing(providerName)
	}

	var result QuoteResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": ticker,
			"token":  c.apiKey,
		}).
		SetResult(&result).
		Get("/quote")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return quote.Quote{}, provider.NewTimeout(providerName, err)
		}
		return quote.Quote{}, provider.NewNetwork(providerName, err)
	}

	if !resp.IsSuccess() {
		return quote.Quote{}, provider.ClassifyStatus(providerName, resp.StatusCode())
	}

	// Finnhub answers unknown tickers with an all-zero payload.
	if result.Current == 0 && result.PreviousClose == 0 {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("no quote data for %s", ticker))
	}

	return quote.Quote{
		Ticker:        ticker,
		CurrentPrice:  result.Current,
		Change:        result.Change,
		PercentChange: result.PercentChange,
		ResolvedAt:    time.Now(),
	}, nil
}
