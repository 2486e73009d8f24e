// Package ratelimit bounds in-flight requests against an upstream API to a
// fixed requests-per-second budget.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter is a counting semaphore sized to the requests-per-second budget.
// Acquire blocks until a slot frees up; Release returns the slot after a
// delay inversely proportional to the remaining capacity, so a nearly
// saturated limiter spreads releases across the full second instead of
// letting bursts through back to back.
//
// The limiter is an explicitly constructed component injected into its
// consumers; there is deliberately no package-level instance.
type Limiter struct {
	sem       *semaphore.Weighted
	available atomic.Int64
}

// New creates a limiter for the given requests-per-second budget. Budgets
// below one are clamped to one.
func New(requestsPerSecond int) *Limiter {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	l := &Limiter{
		sem: semaphore.NewWeighted(int64(requestsPerSecond)),
	}
	l.available.Store(int64(requestsPerSecond))
	return l
}

// Acquire claims one request slot, blocking until one is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.available.Add(-1)
	return nil
}

// Release schedules the slot's return after the smoothing delay. It never
// blocks the caller.
func (l *Limiter) Release() {
	remaining := l.available.Load()
	delay := time.Second
	if remaining > 0 {
		delay = time.Second / time.Duration(remaining)
	}
	time.AfterFunc(delay, func() {
		l.available.Add(1)
		l.sem.Release(1)
	})
}

// Available reports the current free slot count. Used by tests and debug
// endpoints only; the value is stale the moment it is read.
func (l *Limiter) Available() int {
	return int(l.available.Load())
}
