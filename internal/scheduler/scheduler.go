package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/resolver"
	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/snapshot"
)

// Scheduler runs the periodic jobs of watch mode: refreshing the
// watchlist so the daily snapshot stays warm, and pruning snapshots
// past the retention horizon.
type Scheduler struct {
	cron      *cron.Cron
	resolver  *resolver.Resolver
	snapshots *snapshot.Store
	watchlist []string
	log       *slog.Logger
}

// New creates a Scheduler; jobs are registered separately.
func New(res *resolver.Resolver, snapshots *snapshot.Store, watchlist []string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      cron.New(),
		resolver:  res,
		snapshots: snapshots,
		watchlist: watchlist,
		log:       logger,
	}
}

// Register installs the refresh and prune jobs with the given cron specs.
func (s *Scheduler) Register(refreshSpec, pruneSpec string) error {
	if _, err := s.cron.AddFunc(refreshSpec, s.refresh); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if _, err := s.cron.AddFunc(pruneSpec, s.prune); err != nil {
		return fmt.Errorf("register prune job: %w", err)
	}
	return nil
}

// Start begins job execution in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that completes when any
// running job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) refresh() {
	start := time.Now()
	quotes := s.resolver.ResolveAll(context.Background(), s.watchlist, resolver.Options{})

	live := 0
	for _, q := range quotes {
		if q.Source == quote.SourceLive {
			live++
		}
	}
	s.log.Info("watchlist refreshed",
		"tickers", len(quotes),
		"live", live,
		"elapsed", time.Since(start))
}

func (s *Scheduler) prune() {
	if err := s.snapshots.Prune(); err != nil {
		s.log.Warn("snapshot prune failed", "error", err)
	}
}
