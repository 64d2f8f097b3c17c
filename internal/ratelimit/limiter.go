// Package ratelimit implements the per-scraper polite-request throttle: a
// 60-second sliding window request cap plus a minimum inter-request delay
// with jitter.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// window is the span the request cap is enforced over.
const window = time.Minute

// Limiter enforces requests-per-minute and inter-request delay with jitter.
// One Limiter per scraper instance, never shared across sites: a shared
// limiter would let one slow site throttle the others.
//
// The cap is a true sliding window over request timestamps, not a token
// bucket: a bucket's burst+refill admits more than N requests in a 60s
// span whenever the pacing delay is shorter than the refill interval.
type Limiter struct {
	mu sync.Mutex

	requestsPerMinute int
	sent              []time.Time // timestamps of requests in the last window, oldest first

	delayBetweenRequests time.Duration
	delayVariance        time.Duration
	detailDelay          time.Duration

	lastRequest time.Time
}

// Config configures a Limiter.
type Config struct {
	RequestsPerMinute    int
	DelayBetweenRequests time.Duration
	DelayVariance        time.Duration
	DetailDelay          time.Duration
}

// DefaultConfig returns conservative politeness defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute:    20,
		DelayBetweenRequests: 2 * time.Second,
		DelayVariance:        500 * time.Millisecond,
		DetailDelay:          1 * time.Second,
	}
}

// New creates a Limiter from cfg.
func New(cfg Config) *Limiter {
	return &Limiter{
		requestsPerMinute:    cfg.RequestsPerMinute,
		delayBetweenRequests: cfg.DelayBetweenRequests,
		delayVariance:        cfg.DelayVariance,
		detailDelay:          cfg.DetailDelay,
	}
}

// Throttle blocks until the caller may issue the next list-page request: the
// sliding-window budget has room, and at least
// delayBetweenRequests+uniform(0,delayVariance) has elapsed since the last
// request.
func (l *Limiter) Throttle(ctx context.Context) error {
	return l.throttle(ctx, l.delayBetweenRequests)
}

// ThrottleDetail is like Throttle but uses the (typically smaller)
// inter-request delay configured for detail-page fetches.
func (l *Limiter) ThrottleDetail(ctx context.Context) error {
	return l.throttle(ctx, l.detailDelay)
}

func (l *Limiter) throttle(ctx context.Context, baseDelay time.Duration) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := time.Now()
		l.prune(now)

		var wait time.Duration

		if l.requestsPerMinute > 0 && len(l.sent) >= l.requestsPerMinute {
			// Window full: wait until the oldest request ages out.
			wait = l.sent[0].Add(window).Sub(now)
		}

		if !l.lastRequest.IsZero() {
			jitter := time.Duration(0)
			if l.delayVariance > 0 {
				jitter = time.Duration(rand.Int63n(int64(l.delayVariance)))
			}
			if d := baseDelay + jitter - now.Sub(l.lastRequest); d > wait {
				wait = d
			}
		}

		if wait <= 0 {
			l.sent = append(l.sent, now)
			l.lastRequest = now
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

// prune drops timestamps older than the window. Must be called with l.mu
// held.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(l.sent) && !l.sent[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.sent = append(l.sent[:0], l.sent[i:]...)
	}
}

// Reset clears the sliding window and the last-request timestamp.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = l.sent[:0]
	l.lastRequest = time.Time{}
}
