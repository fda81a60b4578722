// Package ratelimit paces outbound requests per destination host. The
// orchestrator, not individual adapters, holds the limiter, so politeness is
// enforced globally across concurrent lookups.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between requests to the same host.
// Callers reserve the next free slot and sleep until it arrives; release
// order is FIFO-ish with no stronger fairness guarantee.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     map[string]time.Time
	now      func() time.Time
}

// New builds a limiter allowing ratePerSecond requests per host. A rate of
// zero or less disables pacing.
func New(ratePerSecond float64) *Limiter {
	var interval time.Duration
	if ratePerSecond > 0 {
		interval = time.Duration(float64(time.Second) / ratePerSecond)
	}
	return &Limiter{
		interval: interval,
		next:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Acquire blocks until the per-host rate allows another request, or until ctx
// is done. An empty host is a no-op; adapters that do not touch the network
// pass one.
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	if l.interval <= 0 || host == "" {
		return ctx.Err()
	}

	l.mu.Lock()
	now := l.now()
	slot := l.next[host]
	if slot.Before(now) {
		slot = now
	}
	l.next[host] = slot.Add(l.interval)
	l.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
