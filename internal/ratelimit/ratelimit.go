// Package ratelimit throttles outbound feed requests and inbound API clients.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiter paces calls to one upstream host.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter allows perSecond requests with a burst of one. A non-positive
// rate disables throttling.
func NewLimiter(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{rl: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next request may go out or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.rl.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// ClientLimiter keeps one token bucket per client key. Buckets of clients
// idle longer than ttl are evicted.
type ClientLimiter struct {
	perSecond rate.Limit
	burst     int
	ttl       time.Duration
	buckets   *cache.Cache
}

func NewClientLimiter(perSecond float64, burst int, ttl time.Duration) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClientLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		ttl:       ttl,
		buckets:   cache.New(ttl, 2*ttl),
	}
}

// Allow reports whether client may make a request now.
func (c *ClientLimiter) Allow(client string) bool {
	if c == nil || c.perSecond <= 0 {
		return true
	}
	if v, ok := c.buckets.Get(client); ok {
		l := v.(*rate.Limiter)
		// touch to extend the idle window
		c.buckets.Set(client, l, c.ttl)
		return l.Allow()
	}
	l := rate.NewLimiter(c.perSecond, c.burst)
	if err := c.buckets.Add(client, l, c.ttl); err != nil {
		// lost a race with another request from the same client
		if v, ok := c.buckets.Get(client); ok {
			l = v.(*rate.Limiter)
		}
	}
	return l.Allow()
}

// Clients returns the number of tracked clients.
func (c *ClientLimiter) Clients() int {
	if c == nil {
		return 0
	}
	return c.buckets.ItemCount()
}
