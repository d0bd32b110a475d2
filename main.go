package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/config"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/diskcache"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider/alphavantage"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider/finnhub"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider/marketstack"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/provider/yahoo"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/ratelimit"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/resolver"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/scheduler"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/snapshot"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/staticdata"
)

func main() {
	watch := flag.Bool("watch", false, "keep running and refresh the watchlist on a schedule")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	res, snapshots, err := buildResolver(cfg)
	if err != nil {
		log.Fatalf("Failed to build resolver: %v", err)
	}

	// Startup maintenance: drop snapshots past the retention horizon.
	if err := snapshots.Prune(); err != nil {
		slog.Warn("startup snapshot prune failed", "error", err)
	}

	if *watch {
		runWatch(ctx, cfg, res, snapshots)
		return
	}

	tickers := flag.Args()
	if len(tickers) == 0 {
		tickers = cfg.Watchlist
	}

	quotes := res.ResolveAll(ctx, tickers, resolver.Options{})
	for _, q := range quotes {
		degraded := ""
		if q.Source.Degraded() {
			degraded = " (degraded)"
		}
		fmt.Printf("%-8s $%10.2f  %+7.2f%%  [%s]%s\n",
			q.Ticker, q.CurrentPrice, q.PercentChange, q.Source, degraded)
	}
}

func runWatch(ctx context.Context, cfg *config.Config, res *resolver.Resolver, snapshots *snapshot.Store) {
	sched := scheduler.New(res, snapshots, cfg.Watchlist, slog.Default())
	if err := sched.Register(cfg.RefreshCron, cfg.PruneCron); err != nil {
		log.Fatalf("Failed to register scheduled jobs: %v", err)
	}

	sched.Start()
	slog.Info("watch mode started",
		"watchlist", cfg.Watchlist,
		"refresh", cfg.RefreshCron,
		"prune", cfg.PruneCron)

	<-ctx.Done()
	<-sched.Stop().Done()
}

// buildResolver wires the stateful services (disk cache, rate limiter,
// snapshot store, static dataset) into the fallback resolver. All of
// them are constructed exactly once and shared by reference.
func buildResolver(cfg *config.Config) (*resolver.Resolver, *snapshot.Store, error) {
	cache, err := diskcache.New(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	snapshots, err := snapshot.New(cfg.CacheDir, cfg.SnapshotRetentionDays)
	if err != nil {
		return nil, nil, err
	}

	var static *staticdata.Dataset
	if cfg.StaticDataFile != "" {
		static, err = staticdata.LoadFile(cfg.StaticDataFile)
	} else {
		static, err = staticdata.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	specs := []resolver.ProviderSpec{
		{Client: yahoo.New(), Priority: 1, CacheTTL: cfg.Yahoo.CacheTTL},
		{Client: finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL), Priority: 2, CacheTTL: cfg.Finnhub.CacheTTL},
		{Client: alphavantage.New(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL), Priority: 3, CacheTTL: cfg.AlphaVantage.CacheTTL},
		{Client: marketstack.New(cfg.Marketstack.APIKey, cfg.Marketstack.BaseURL), Priority: 4, CacheTTL: cfg.Marketstack.CacheTTL},
	}
	for _, spec := range specs {
		slog.Info("provider configured",
			"name", spec.Client.Name(),
			"priority", spec.Priority,
			"enabled", spec.Client.Enabled())
	}

	res := resolver.New(resolver.Config{
		Providers:        specs,
		Cache:            cache,
		Limiter:          ratelimit.New(cfg.MinCallIntervals()),
		Snapshots:        snapshots,
		Static:           static,
		Workers:          cfg.WorkerPoolSize,
		PerTickerTimeout: cfg.PerTickerTimeout,
		Logger:           slog.Default(),
	})
	return res, snapshots, nil
}
