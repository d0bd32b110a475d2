package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between call starts per provider.
// One Limiter is shared by every concurrent resolution so that calls to
// the same provider are never started closer together than its
// configured interval, regardless of which ticker triggered them.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// New builds a Limiter from a provider-name to minimum-call-interval
// mapping. Providers with a non-positive interval are not limited.
func New(intervals map[string]time.Duration) *Limiter {
	l := &Limiter{limiters: make(map[string]*rate.Limiter, len(intervals))}
	for name, interval := range intervals {
		if interval <= 0 {
			continue
		}
		// Burst of 1: the first call proceeds immediately, every
		// subsequent start is spaced at least one interval apart.
		l.limiters[name] = rate.NewLimiter(rate.Every(interval), 1)
	}
	return l
}

// Wait blocks until the named provider may start another call, or until
// ctx is done. Providers without a configured interval proceed
// immediately. The limiter state is updated before Wait returns, so the
// caller never holds any lock across the subsequent network call.
func (l *Limiter) Wait(ctx context.Context, name string) error {
	l.mu.RLock()
	limiter, ok := l.limiters[name]
	l.mu.RUnlock()

	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
