package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

const providerName = "alphavantage"

// GlobalQuoteResponse represents the AlphaVantage GLOBAL_QUOTE payload.
// The free tier signals throttling with an HTTP 200 carrying a "Note"
// or "Information" field instead of quote data.
type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// Client fetches quotes from AlphaVantage. The free tier allows only 25
// calls per day, so this provider sits late in the priority order and
// carries a long cache TTL.
type Client struct {
	apiKey string
	client *resty.Client
}

// New creates an AlphaVantage client. An empty apiKey leaves the client
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

	var result GlobalQuoteResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   c.apiKey,
			"function": "GLOBAL_QUOTE",
			"symbol":   ticker,
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return quote.Quote{}, provider.NewTimeout(providerName, err)
		}
		return quote.Quote{}, provider.NewNetwork(providerName, err)
	}

	if !resp.IsSuccess() {
		return quote.Quote{}, provider.ClassifyStatus(providerName, resp.StatusCode())
	}

	if result.Note != "" || result.Information != "" {
		return quote.Quote{}, provider.NewRateLimited(providerName, resp.StatusCode())
	}

	if result.ErrorMessage != "" {
		return quote.Quote{}, provider.NewMalformed(providerName, result.ErrorMessage)
	}

	return normalize(ticker, &result)
}

// normalize converts AlphaVantage's all-string payload into a Quote.
func normalize(ticker string, r *GlobalQuoteResponse) (quote.Quote, error) {
	g := r.GlobalQuote

	if g.Price == "" {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("price not found in response for %s", ticker))
	}

	price, err := strconv.ParseFloat(g.Price, 64)
	if err != nil {
		return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("unparseable price %q", g.Price))
	}

	q := quote.Quote{
		Ticker:       ticker,
		CurrentPrice: price,
		ResolvedAt:   time.Now(),
	}

	if g.Change != "" {
		change, err := strconv.ParseFloat(g.Change, 64)
		if err != nil {
			return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("unparseable change %q", g.Change))
		}
		q.Change = change
	}

	if g.ChangePercent != "" {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(g.ChangePercent, "%"), 64)
		if err != nil {
			return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("unparseable change percent %q", g.ChangePercent))
		}
		q.PercentChange = pct
	}

	if g.Volume != "" {
		volume, err := strconv.ParseInt(g.Volume, 10, 64)
		if err != nil {
			return quote.Quote{}, provider.NewMalformed(providerName, fmt.Sprintf("unparseable volume %q", g.Volume))
		}
		q.Volume = volume
	}

	return q, nil
}
