package gitfetch

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// proactiveRate throttles to ~1.2 requests per second, well under
	// the authenticated GitHub quota of 5000 per hour.
	proactiveRate = 1.2

	// minRemaining is the quota floor; below it we wait for the reset.
	minRemaining = 50
)

// rateLimiter combines proactive token-bucket throttling with reactive
// backoff driven by GitHub's X-RateLimit-* response headers.
type rateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		remaining: 5000,
		bucket:    rate.NewLimiter(rate.Limit(proactiveRate), 1),
	}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < minRemaining && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

func (r *rateLimiter) update(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(ts, 0)
		}
	}
}
