package marketstack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

const providerName = "marketstack"

// EODResponse represents the Marketstack /eod/latest payload. API-level
// failures arrive as an in-body error object, sometimes alongside an
// HTTP 200.
type EODResponse struct {
	Error *APIError  `json:"error"`
	Data  []EODEntry `json:"data"`
}

// APIError is Marketstack's in-body error object.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EODEntry is one end-of-day record.
type EODEntry struct {
	Symbol string  `json:"symbol"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Date   string  `json:"date"`
}

// Client fetches end-of-day quotes from Marketstack. It is the last
// network tier: end-of-day data is stale relative to the other
// providers but survives intraday throttling.
type Client struct {
	apiKey string
	client *resty.Client
}

// New creates a Marketstack client. An empty apiKey leaves the client
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

// Fetch retrieves the latest end-of-day quote for a ticker.
func (c *Client) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
	if !c.Enabled() {
		return quote.Quote{}, provider.NewCredentialMissing(providerName)
	}

	var result EODResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_key": c.apiKey,
			"symbols":    ticker,
		}).
		SetResult(&result).
		SetError(&result).
		Get("/eod/latest")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return quote.Quote{}, provider.NewTimeout(providerName, err)
		}
		return quote.Quote{}, provider.NewNetwork(providerName, err)
	}

	if result.Error != nil {
		return quote.Quote{}, classifyAPIError(result.Error)
	}

	if !resp.IsSuccess() {
		return quote.Quote{}, provider.ClassifyStatus(providerName, resp.StatusCode())
	}

	if len(result.Data) == 0 {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("no end-of-day data for %s", ticker))
	}

	return normalize(ticker, result.Data[0])
}

func classifyAPIError(apiErr *APIError) *provider.Error {
	switch apiErr.Code {
	case "rate_limit_reached", "usage_limit_reached":
		return provider.NewRateLimited(providerName, 0)
	case "invalid_access_key", "missing_access_key", "function_access_restricted":
		return provider.NewUnauthorized(providerName, 0)
	default:
		return provider.NewMalformed(providerName, fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Message))
	}
}

// normalize derives the daily change from the open/close spread since
// Marketstack does not report it directly.
func normalize(ticker string, e EODEntry) (quote.Quote, error) {
	if e.Close <= 0 {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("missing close price for %s", ticker))
	}

	q := quote.Quote{
		Ticker:       ticker,
		CurrentPrice: e.Close,
		Volume:       int64(e.Volume),
		ResolvedAt:   time.Now(),
	}
	if e.Open > 0 {
		q.Change = e.Close - e.Open
		q.PercentChange = q.Change / e.Open * 100
	}
	return q, nil
}
