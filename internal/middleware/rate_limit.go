package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// CleanupInterval is how often idle client limiters are evicted
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is how long an idle client keeps its limiter
	LimiterTTL = 10 * time.Minute
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter is a token bucket per client key (the client IP in practice)
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	perMinute int
	limit     rate.Limit
	burst     int

	stop     chan struct{}
	stopOnce sync.Once
}

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute sustained with bursts of up to burst
// requests, and starts evicting idle clients in the background.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		perMinute: requestsPerMinute,
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		stop:      make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Check consumes one token for key at time now
func (r *RateLimiter) Check(key string, now time.Time) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.clients[key]
	if !ok {
		cl = &clientLimiter{bucket: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = cl
	}
	cl.lastSeen = now

	if cl.bucket.AllowN(now, 1) {
		return Decision{Allowed: true, Remaining: int(cl.bucket.TokensAt(now))}
	}

	// Ask when the next token frees up without keeping the reservation
	res := cl.bucket.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return Decision{RetryAfter: wait}
}

// Len returns the number of tracked clients
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *RateLimiter) evictLoop() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.evictIdle(now)
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, cl := range r.clients {
		if now.Sub(cl.lastSeen) > LimiterTTL {
			delete(r.clients, key)
		}
	}
	log.Debug().Int("clients", len(r.clients)).Msg("Rate limiter eviction pass")
}

// Stop ends background eviction; it may be called more than once
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// RateLimit rejects requests over the per-client budget with 429 and a
// Retry-After header. Clients are keyed by echo's RealIP.
func RateLimit(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := c.RealIP()
			d := rl.Check(client, time.Now())

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if d.Allowed {
				return next(c)
			}

			retryAfter := int(d.RetryAfter.Round(time.Second) / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn().
				Str("client", client).
				Int("retry_after", retryAfter).
				Msg("Rate limit exceeded")

			return tooManyRequestsError(c, retryAfter)
		}
	}
}
