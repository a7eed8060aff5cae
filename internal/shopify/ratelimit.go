package shopify

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces requests out to at most rps per second. All client calls
// across all goroutines share one limiter, so bulk refresh workers and the
// webhook path together never exceed the store's API allowance.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewLimiter creates a limiter allowing rps requests per second
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	return &Limiter{interval: time.Duration(float64(time.Second) / rps)}
}

// Wait blocks until the next request slot or until ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}
	wait := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	l.mu.Unlock()

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
