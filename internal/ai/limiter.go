// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Limiter bounds requests to the AI backend with a sliding one-minute
// window and a minimum gap between requests. It is safe for concurrent use
// by all workers.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	window    time.Duration
	history   []time.Time // oldest first, at most perMinute entries
	gap       *rate.Limiter
}

// NewLimiter returns a Limiter for cfg. A non-positive RequestsPerMinute
// disables the window; a zero RequestDelay disables the gap.
func NewLimiter(cfg types.RateLimitConfig) *Limiter {
	every := rate.Inf
	if cfg.RequestDelay > 0 {
		every = rate.Every(cfg.RequestDelay)
	}
	return &Limiter{
		perMinute: cfg.RequestsPerMinute,
		window:    time.Minute,
		gap:       rate.NewLimiter(every, 1),
	}
}

// Wait blocks until a request may be sent, then records it. It returns
// ctx.Err() if the context ends first.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait := l.reserve(time.Now())
		if wait <= 0 {
			break
		}
		logger.Info("rate limit reached, waiting %.1f seconds", wait.Seconds())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return l.gap.Wait(ctx)
}

// reserve records a request at now when the window has room and returns 0;
// otherwise it returns how long until the oldest request leaves the window.
func (l *Limiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.perMinute <= 0 {
		return 0
	}
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.history) && !l.history[i].After(cutoff) {
		i++
	}
	l.history = l.history[i:]

	if len(l.history) < l.perMinute {
		l.history = append(l.history, now)
		return 0
	}
	return l.history[0].Sub(cutoff)
}

// Recent returns the number of requests in the current window.
func (l *Limiter) Recent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.window)
	n := 0
	for _, t := range l.history {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
