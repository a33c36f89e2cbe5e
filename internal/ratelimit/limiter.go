// Package ratelimit implements C3's per-API-key sliding-window counter
// (spec.md §4.3): "counters are (requests_used, window_start) within a
// sliding window of rate_limit_window_seconds. The check-and-reserve is
// atomic... Enterprise tier bypasses counting." This is the in-process
// mutex-guarded map alternative spec.md names explicitly, grounded on the
// teacher's general style of small mutex-guarded in-memory maps (e.g.
// jobx.Client.handlers) rather than a database row with a version column.
package ratelimit

import (
	"sync"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

type window struct {
	requestsUsed int
	windowStart  time.Time
}

// Limiter holds one counter per API key. A single process-wide instance is
// safe for concurrent use across every request goroutine.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Reserve performs the atomic check-and-reserve for one request against
// apiKeyID's window: limit requests per windowSeconds. Enterprise tier
// always allows (spec.md §4.3, §8 property 1). On success it increments
// the counter as part of the same critical section as the check.
func (l *Limiter) Reserve(apiKeyID string, tier store.Tier, limit, windowSeconds int) (allowed bool, retryAfter time.Duration) {
	if tier == store.TierEnterprise {
		return true, 0
	}
	if limit <= 0 {
		limit = 1
	}
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	period := time.Duration(windowSeconds) * time.Second

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[apiKeyID]
	if !ok || now.Sub(w.windowStart) >= period {
		w = &window{requestsUsed: 0, windowStart: now}
		l.windows[apiKeyID] = w
	}

	if w.requestsUsed >= limit {
		retryAfter = period - now.Sub(w.windowStart)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}

	w.requestsUsed++
	return true, 0
}

// Remaining reports how many requests are left in the current window
// without reserving one, used by status/introspection endpoints.
func (l *Limiter) Remaining(apiKeyID string, limit int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[apiKeyID]
	if !ok {
		return limit
	}
	remaining := limit - w.requestsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears apiKeyID's window, used by admin key-limit updates and tests.
func (l *Limiter) Reset(apiKeyID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, apiKeyID)
}
