// Package ratelimit enforces a minimum interval between calls to each
// external metadata provider. Limits are courtesy limits: blocking the one
// pipeline goroutine is intentional, since throughput is bounded by the
// providers, not by local work.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token-bucket limiter per provider, configured with
// burst 1 so consecutive calls are spaced by at least the provider's
// interval. It also counts the calls it admitted, which doubles as the
// run's external-API call counter since Wait sits directly in front of
// every request.
type Limiter struct {
	limiters map[string]*rate.Limiter

	mu    sync.Mutex
	calls map[string]int
}

// New creates a Limiter from a provider-name to minimum-interval map.
func New(intervals map[string]rate.Limit) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*rate.Limiter, len(intervals)),
		calls:    make(map[string]int),
	}
	for name, lim := range intervals {
		l.limiters[name] = rate.NewLimiter(lim, 1)
	}
	return l
}

// Wait blocks until the provider's minimum interval has elapsed since its
// last recorded call, then records the slot as taken. It must be called
// immediately before the network request so the recorded time reflects the
// actual call start. Providers without a configured limit pass through,
// but are still counted.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	lim, ok := l.limiters[provider]
	if ok {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.calls[provider]++
	l.mu.Unlock()
	return nil
}

// Calls returns the total number of admitted calls across all providers.
func (l *Limiter) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, n := range l.calls {
		total += n
	}
	return total
}
