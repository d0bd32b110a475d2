package resolver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/diskcache"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/ratelimit"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/snapshot"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/staticdata"
)

// cacheKind is the dataset kind under which quote payloads are cached.
const cacheKind = "quote"

const (
	defaultWorkers = 10
	defaultTimeout = 30 * time.Second
)

// ProviderSpec couples a provider client with its resolution settings.
type ProviderSpec struct {
	Client provider.Provider
	// Priority is the fixed rank in the fallback chain; lower wins.
	Priority int
	// CacheTTL bounds how long this provider's cached payloads stay valid.
	CacheTTL time.Duration
}

// Config assembles a Resolver. Cache, Limiter, Snapshots, and Static
// are required; Workers, PerTickerTimeout, and Logger fall back to
// defaults when zero.
type Config struct {
	Providers        []ProviderSpec
	Cache            *diskcache.Cache
	Limiter          *ratelimit.Limiter
	Snapshots        *snapshot.Store
	Static           *staticdata.Dataset
	Workers          int
	PerTickerTimeout time.Duration
	Logger           *slog.Logger
}

// Options narrow a single resolution request.
type Options struct {
	// MaxCacheAge further restricts how old a provider cache entry may
	// be; zero keeps each provider's configured TTL. It can only
	// tighten a TTL, never widen one.
	MaxCacheAge time.Duration
	// Providers restricts the live chain to the named providers; empty
	// means all of them.
	Providers []string
}

func (o Options) allows(name string) bool {
	if len(o.Providers) == 0 {
		return true
	}
	for _, p := range o.Providers {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

type chainEntry struct {
	client   provider.Provider
	ttl      time.Duration
	disabled atomic.Bool
}

// Resolver walks the fallback chain for single tickers and fans batches
// out across a bounded worker pool. Resolve and ResolveAll are total:
// they always produce a well-formed Quote for every ticker, degrading
// through provider cache, daily snapshot, static reference data, and
// finally a synthetic placeholder.
type Resolver struct {
	chain     []*chainEntry
	cache     *diskcache.Cache
	limiter   *ratelimit.Limiter
	snapshots *snapshot.Store
	static    *staticdata.Dataset
	workers   int
	timeout   time.Duration
	now       func() time.Time
	log       *slog.Logger
}

// New builds a Resolver. Providers are ordered by their fixed priority
// rank; the order never changes at runtime, which keeps resolution
// deterministic.
func New(cfg Config) *Resolver {
	specs := make([]ProviderSpec, len(cfg.Providers))
	copy(specs, cfg.Providers)
	sort.SliceStable(specs, func(i, j int) bool {
		return specs[i].Priority < specs[j].Priority
	})

	chain := make([]*chainEntry, 0, len(specs))
	for _, spec := range specs {
		chain = append(chain, &chainEntry{client: spec.Client, ttl: spec.CacheTTL})
	}

	r := &Resolver{
		chain:     chain,
		cache:     cfg.Cache,
		limiter:   cfg.Limiter,
		snapshots: cfg.Snapshots,
		static:    cfg.Static,
		workers:   cfg.Workers,
		timeout:   cfg.PerTickerTimeout,
		now:       time.Now,
		log:       cfg.Logger,
	}
	if r.workers <= 0 {
		r.workers = defaultWorkers
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// Resolve produces exactly one Quote for the ticker. It never fails:
// when every tier comes up empty a synthetic demo quote is returned.
func (r *Resolver) Resolve(ctx context.Context, ticker string) quote.Quote {
	return r.resolve(ctx, ticker, Options{})
}

// ResolveAll resolves every ticker with bounded concurrency. The result
// slice has the same length and order as the input: each quote is
// written into the slot matching its input position, not appended in
// completion order. A slow or failing ticker cannot delay the others
// beyond the per-ticker timeout.
func (r *Resolver) ResolveAll(ctx context.Context, tickers []string, opts Options) []quote.Quote {
	results := make([]quote.Quote, len(tickers))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			results[i] = r.resolve(tctx, ticker, opts)
			return nil
		})
	}
	g.Wait()

	return results
}

func (r *Resolver) resolve(ctx context.Context, ticker string, opts Options) quote.Quote {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if q, ok := r.resolveLive(ctx, ticker, opts); ok {
		return q
	}

	// Offline tiers only touch local disk; the per-ticker timeout bounds
	// the live tiers and must not block the fallbacks below.
	today := snapshot.DateKey(r.now())
	if q, ok := r.snapshots.Load(today, ticker); ok {
		q.Ticker = ticker
		q.Source = quote.SourceDailyCache
		q.ResolvedAt = r.now()
		r.log.Info("serving daily snapshot", "ticker", ticker)
		return q
	}

	if rec, ok := r.static.Lookup(ticker); ok {
		r.log.Info("serving static reference data", "ticker", ticker)
		return rec.Quote()
	}

	r.log.Warn("all data tiers empty, synthesizing demo quote", "ticker", ticker)
	return demoQuote(ticker, r.now())
}

// resolveLive walks the provider chain in priority order: a valid cache
// entry short-circuits the network; otherwise the call is rate limited,
// fetched, and on success written through to the disk cache and today's
// snapshot. Any classified failure moves on to the next provider.
func (r *Resolver) resolveLive(ctx context.Context, ticker string, opts Options) (quote.Quote, bool) {
	for i, entry := range r.chain {
		name := entry.client.Name()
		if !opts.allows(name) || !entry.client.Enabled() || entry.disabled.Load() {
			continue
		}
		if ctx.Err() != nil {
			r.log.Warn("live resolution timed out, using offline tiers", "ticker", ticker)
			return quote.Quote{}, false
		}

		key := diskcache.Key{Provider: name, Ticker: ticker, Kind: cacheKind}
		ttl := entry.ttl
		if opts.MaxCacheAge > 0 && opts.MaxCacheAge < ttl {
			ttl = opts.MaxCacheAge
		}

		if raw, age, ok := r.cache.Get(key); ok && age < ttl {
			var q quote.Quote
			if err := json.Unmarshal(raw, &q); err == nil && q.CurrentPrice > 0 {
				q.Ticker = ticker
				q.Source = quote.SourceProviderCache
				q.ResolvedAt = r.now()
				r.overlayFresher(&q, r.now().Add(-age), i, ticker, opts)
				return q, true
			}
		}

		if err := r.limiter.Wait(ctx, name); err != nil {
			r.log.Warn("rate limit wait aborted", "provider", name, "ticker", ticker, "error", err)
			return quote.Quote{}, false
		}

		q, err := entry.client.Fetch(ctx, ticker)
		if err != nil {
			kind := provider.KindOf(err)
			r.log.Warn("provider fetch failed",
				"provider", name,
				"ticker", ticker,
				"kind", string(kind),
				"error", err)
			if kind == provider.KindUnauthorized {
				entry.disabled.Store(true)
				r.log.Warn("disabling provider for the remainder of the run", "provider", name)
			}
			continue
		}

		q.Ticker = ticker
		q.Source = quote.SourceLive
		q.ResolvedAt = r.now()

		if raw, err := json.Marshal(q); err == nil {
			if err := r.cache.Put(key, raw); err != nil {
				r.log.Warn("cache write failed", "provider", name, "ticker", ticker, "error", err)
			}
		}
		if err := r.snapshots.Save(snapshot.DateKey(r.now()), ticker, q); err != nil {
			r.log.Warn("snapshot write failed", "ticker", ticker, "error", err)
		}
		return q, true
	}
	return quote.Quote{}, false
}

// overlayFresher copies price and volume from a lower-priority
// provider's still-valid cache entry when that entry is fresher than
// the resolved data. Only those two fields move: identity, provenance,
// and every other field of the higher-priority quote stay untouched.
// Cache reads only; this must never delay resolution with a network call.
func (r *Resolver) overlayFresher(q *quote.Quote, fetchedAt time.Time, from int, ticker string, opts Options) {
	for _, entry := range r.chain[from+1:] {
		name := entry.client.Name()
		if !opts.allows(name) {
			continue
		}

		raw, age, ok := r.cache.Get(diskcache.Key{Provider: name, Ticker: ticker, Kind: cacheKind})
		if !ok || age >= entry.ttl {
			continue
		}
		entryFetched := r.now().Add(-age)
		if !entryFetched.After(fetchedAt) {
			continue
		}

		var fresher quote.Quote
		if err := json.Unmarshal(raw, &fresher); err != nil || fresher.CurrentPrice <= 0 {
			continue
		}

		q.CurrentPrice = fresher.CurrentPrice
		if fresher.Volume > 0 {
			q.Volume = fresher.Volume
		}
		fetchedAt = entryFetched
		r.log.Debug("overlaid fresher price from lower-priority cache",
			"ticker", ticker,
			"provider", name)
	}
}
