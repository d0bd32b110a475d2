package testutil

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

// FakeProvider is a controllable implementation of the Provider
// interface for testing. It counts Fetch invocations so tests can
// assert that cache hits suppress network calls.
type FakeProvider struct {
	NameValue    string
	EnabledValue bool
	FetchFunc    func(ctx context.Context, ticker string) (quote.Quote, error)

	calls atomic.Int64
}

// Name implements the Provider interface.
func (f *FakeProvider) Name() string {
	if f.NameValue == "" {
		return "fake"
	}
	return f.NameValue
}

// Enabled implements the Provider interface.
func (f *FakeProvider) Enabled() bool {
	return f.EnabledValue
}

// Fetch implements the Provider interface.
func (f *FakeProvider) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
	f.calls.Add(1)
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx, ticker)
	}
	return quote.Quote{}, provider.NewNetwork(f.Name(), errors.New("no FetchFunc configured"))
}

// Calls returns how many times Fetch has been invoked.
func (f *FakeProvider) Calls() int {
	return int(f.calls.Load())
}

// NewFakeProvider creates an enabled fake that serves the given price
// for any ticker.
func NewFakeProvider(name string, price float64) *FakeProvider {
	return &FakeProvider{
		NameValue:    name,
		EnabledValue: true,
		FetchFunc: func(_ context.Context, ticker string) (quote.Quote, error) {
			return quote.Quote{
				Ticker:       ticker,
				CurrentPrice: price,
				Volume:       1_000_000,
			}, nil
		},
	}
}

// NewFailingProvider creates an enabled fake whose Fetch always returns
// the given error.
func NewFailingProvider(name string, err error) *FakeProvider {
	return &FakeProvider{
		NameValue:    name,
		EnabledValue: true,
		FetchFunc: func(context.Context, string) (quote.Quote, error) {
			return quote.Quote{}, err
		},
	}
}
