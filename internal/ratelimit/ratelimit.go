// Package ratelimit guards the sentiment API with a daily request budget
// and fixed pacing between calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
)

// Limiter tracks a rolling daily budget and enforces a minimum interval
// between requests. max == 0 means no budget, only pacing.
type Limiter struct {
	mu       sync.Mutex
	max      int
	count    int
	resetAt  time.Time
	interval time.Duration
	last     time.Time

	cacheHits   int
	cacheMisses int
}

func New(max int, interval time.Duration) *Limiter {
	return &Limiter{
		max:      max,
		interval: interval,
		resetAt:  time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether another request fits in today's budget.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	return l.max == 0 || l.count < l.max
}

// Use consumes one request from the budget.
func (l *Limiter) Use() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("daily request limit reached (%d), resets at %s", l.max, l.resetAt.Format(time.RFC3339))
	}
	l.count++
	if l.max > 0 && l.count == l.max {
		logger.Warn("daily request budget exhausted", "max", l.max)
	}
	return nil
}

// Wait blocks until the pacing interval since the previous request has
// passed, then claims the slot.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	wait := l.interval - time.Since(l.last)
	if wait < 0 {
		wait = 0
	}
	l.last = time.Now().Add(wait)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (l *Limiter) RecordCacheHit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheHits++
}

func (l *Limiter) RecordCacheMiss() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheMisses++
}

// Stats reports current usage for the health endpoint.
func (l *Limiter) Stats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()

	remaining := -1
	if l.max > 0 {
		remaining = l.max - l.count
	}
	return map[string]any{
		"requests_used":      l.count,
		"requests_remaining": remaining,
		"resets_at":          l.resetAt.Format(time.RFC3339),
		"cache_hits":         l.cacheHits,
		"cache_misses":       l.cacheMisses,
	}
}

// caller must hold mu
func (l *Limiter) maybeReset() {
	if time.Now().After(l.resetAt) {
		l.count = 0
		l.resetAt = time.Now().Add(24 * time.Hour)
	}
}
