// Package ratelimit provides per-host token bucket rate limiting.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequests is the default number of requests allowed per window.
	DefaultRequests = 3
	// DefaultWindow is the default refill window.
	DefaultWindow = time.Second
)

// Limiter hands out request permits per host. Each host has its own
// token bucket with capacity equal to the request count, refilled evenly
// across the window. Hosts never share a bucket.
//
// A nil *Limiter allows everything.
type Limiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithRate sets the number of requests allowed per window.
// Non-positive values are ignored.
func WithRate(requests int, window time.Duration) Option {
	return func(l *Limiter) {
		if requests > 0 && window > 0 {
			l.requests = requests
			l.window = window
		}
	}
}

// New creates a Limiter. The default is 3 requests per second per host.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		requests: DefaultRequests,
		window:   DefaultWindow,
		buckets:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the bucket size.
func (l *Limiter) Capacity() int {
	return l.requests
}

// Window returns the refill window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Acquire blocks until a permit for host is available or ctx is done.
// It never drops a request; the only error is the context error.
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l == nil {
		return nil
	}

	r := l.bucket(host).Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Wait is Acquire for the host of rawURL.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.Acquire(ctx, HostOf(rawURL))
}

// AllowAt takes a permit for host at instant t without blocking.
// It reports whether a permit was available.
func (l *Limiter) AllowAt(host string, t time.Time) bool {
	if l == nil {
		return true
	}
	return l.bucket(host).AllowN(t, 1)
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	host = strings.ToLower(host)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if ok {
		return b
	}
	interval := l.window / time.Duration(l.requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	b = rate.NewLimiter(rate.Every(interval), l.requests)
	l.buckets[host] = b
	return b
}

// HostOf returns the lower-cased host (with port) of rawURL, or rawURL
// itself when it does not parse as an absolute URL.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Host)
}
