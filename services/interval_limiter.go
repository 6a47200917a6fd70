package services

import (
	"context"
	"sync"
	"time"
)

// IntervalLimiter enforces a minimum delay between consecutive calls to a
// rate-limited upstream (Nominatim allows one request per second).
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
	}
}

// Acquire blocks until the caller may issue its request, or ctx is done.
// Each caller reserves its own slot, so concurrent callers are spaced out
// rather than released together.
func (l *IntervalLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
