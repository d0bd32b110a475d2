package provider

import (
	"time"

	"resty.dev/v3"
)

const defaultRequestTimeout = 10 * time.Second

// NewHTTPClient creates the HTTP client shared by the REST-backed
// providers. There is no retry policy on purpose: a failed call must
// fall through to the next tier immediately instead of spinning against
// an upstream that is already throttling us.
func NewHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultRequestTimeout)
}
