package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()
	now := time.Now()

	for i := 0; i < 5; i++ {
		d := rl.Check("10.0.0.1", now)
		assert.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, d.Remaining)
	}

	d := rl.Check("10.0.0.1", now)
	assert.False(t, d.Allowed, "request 6 should be rate limited")
	// One token per 6s at 10/min
	assert.InDelta(t, 6*time.Second, d.RetryAfter, float64(100*time.Millisecond))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(60, 1) // one per second
	defer rl.Stop()
	now := time.Now()

	require.True(t, rl.Check("10.0.0.1", now).Allowed)
	require.False(t, rl.Check("10.0.0.1", now).Allowed)
	assert.True(t, rl.Check("10.0.0.1", now.Add(time.Second)).Allowed)
}

func TestRateLimiter_RejectionDoesNotConsume(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()
	now := time.Now()

	require.True(t, rl.Check("10.0.0.1", now).Allowed)
	for i := 0; i < 3; i++ {
		require.False(t, rl.Check("10.0.0.1", now).Allowed)
	}
	assert.True(t, rl.Check("10.0.0.1", now.Add(time.Second)).Allowed)
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiter(10, 3)
	defer rl.Stop()
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Check("10.0.0.1", now).Allowed)
	}
	assert.False(t, rl.Check("10.0.0.1", now).Allowed)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Check("10.0.0.2", now).Allowed, "client 2 request %d should be allowed", i+1)
	}
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(10, 3)
	defer rl.Stop()
	now := time.Now()

	rl.Check("10.0.0.1", now)
	rl.evictIdle(now)
	assert.Equal(t, 1, rl.Len(), "active limiter should be kept")

	rl.evictIdle(now.Add(LimiterTTL + time.Second))
	assert.Equal(t, 0, rl.Len(), "idle limiter should be evicted")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(10, 3)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func newRateLimitedRequest(e *echo.Echo, ip string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_PerClient(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(10, 2)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	for i := 0; i < 2; i++ {
		c, rec := newRateLimitedRequest(e, "203.0.113.7")
		require.NoError(t, RateLimit(rl)(handler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	}

	c, rec := newRateLimitedRequest(e, "203.0.113.7")
	require.NoError(t, RateLimit(rl)(handler)(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "6", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var problem problemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, errorTypeRateLimit, problem.Type)
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)

	// A different client is unaffected
	c, rec = newRateLimitedRequest(e, "203.0.113.8")
	require.NoError(t, RateLimit(rl)(handler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
