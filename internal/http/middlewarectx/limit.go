package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/http/response"
)

// RateLimit keeps one token bucket per client address.
func RateLimit(log *slog.Logger, cfg config.RateLimit) func(http.Handler) http.Handler {
	buckets := newClientLimiters(cfg, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !buckets.get(key).Allow() {
				log.Warn("too many requests", slog.String("client", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters holds the buckets. Idle entries are swept at most once per
// ttl, and when max is reached the least recently seen client is dropped.
// A zero ttl or max disables that bound.
type clientLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	ttl       time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*clientBucket
}

func newClientLimiters(cfg config.RateLimit, now func() time.Time) *clientLimiters {
	return &clientLimiters{
		rps:       rate.Limit(cfg.RPS),
		burst:     cfg.Burst,
		ttl:       cfg.IdleTTL,
		max:       cfg.MaxClients,
		now:       now,
		lastSweep: now(),
		buckets:   make(map[string]*clientBucket),
	}
}

func (c *clientLimiters) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	if c.ttl > 0 && t.Sub(c.lastSweep) >= c.ttl {
		c.sweep(t)
	}

	b, ok := c.buckets[key]
	if !ok {
		if c.max > 0 && len(c.buckets) >= c.max {
			c.evictOldest()
		}
		b = &clientBucket{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.buckets[key] = b
	}
	b.lastSeen = t
	return b.limiter
}

func (c *clientLimiters) sweep(t time.Time) {
	for key, b := range c.buckets {
		if t.Sub(b.lastSeen) >= c.ttl {
			delete(c.buckets, key)
		}
	}
	c.lastSweep = t
}

func (c *clientLimiters) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, b := range c.buckets {
		if !found || b.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, b.lastSeen, true
		}
	}
	if found {
		delete(c.buckets, oldestKey)
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
