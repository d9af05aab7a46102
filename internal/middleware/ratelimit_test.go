package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/hungry/internal/model"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// clientCount returns the number of tracked clients
func (rl *RateLimiter) clientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// smallLimiter allows 3 requests up front and one more every 30 seconds
func smallLimiter(clock *fakeClock, trustForwarded bool) *RateLimiter {
	return newRateLimiter(RateLimitConfig{
		Rate:           2,
		Window:         time.Minute,
		Burst:          1,
		TrustForwarded: trustForwarded,
	}, clock.Now)
}

// ============================================================================
// Limiter
// ============================================================================

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(RateLimitConfig{}, time.Now)

	assert.Equal(t, 100, rl.Limit())
	assert.Equal(t, time.Minute, rl.window)
	assert.Equal(t, 120, rl.capacity)
	assert.Equal(t, 2*time.Minute, rl.idleAfter)
}

func TestAllow_DrainsBucketThenDenies(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := smallLimiter(clock, false)

	for want := 2; want >= 0; want-- {
		allowed, remaining, _ := rl.Allow("a")
		require.True(t, allowed)
		assert.Equal(t, want, remaining)
	}

	allowed, remaining, reset := rl.Allow("a")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.WithinDuration(t, clock.Now().Add(30*time.Second), reset, time.Millisecond)
}

func TestAllow_ResetIsWhenBucketRefills(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := smallLimiter(clock, false)

	_, _, reset := rl.Allow("a")
	assert.WithinDuration(t, clock.Now().Add(30*time.Second), reset, time.Millisecond)

	rl.Allow("a")
	_, _, reset = rl.Allow("a")
	assert.WithinDuration(t, clock.Now().Add(90*time.Second), reset, time.Millisecond)
}

func TestAllow_RefillsOverTime(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := smallLimiter(clock, false)

	for i := 0; i < 3; i++ {
		rl.Allow("a")
	}
	allowed, _, _ := rl.Allow("a")
	require.False(t, allowed)

	clock.Advance(31 * time.Second)
	allowed, remaining, _ := rl.Allow("a")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	clock.Advance(10 * time.Minute)
	allowed, remaining, _ = rl.Allow("a")
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining, "refill is capped at rate plus burst")
}

func TestAllow_SeparateBucketsPerKey(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := smallLimiter(clock, false)

	for i := 0; i < 3; i++ {
		rl.Allow("a")
	}
	allowedA, _, _ := rl.Allow("a")
	allowedB, remainingB, _ := rl.Allow("b")

	assert.False(t, allowedA)
	assert.True(t, allowedB)
	assert.Equal(t, 2, remainingB)
}

func TestAllow_ConcurrentCallersShareOneBucket(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := newRateLimiter(RateLimitConfig{Rate: 40, Window: time.Minute, Burst: 10}, clock.Now)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowed.Load())
}

func TestEvictIdle(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := smallLimiter(clock, false)

	rl.Allow("stale")
	clock.Advance(90 * time.Second)
	rl.Allow("fresh")
	clock.Advance(31 * time.Second)

	rl.evictIdle()

	assert.Equal(t, 1, rl.clientCount())
	rl.mu.Lock()
	_, ok := rl.clients["fresh"]
	rl.mu.Unlock()
	assert.True(t, ok)
}

func TestStop_Twice_DoesNotPanic(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{Cleanup: time.Millisecond})
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

// ============================================================================
// Middleware
// ============================================================================

func limitedRequest(h http.Handler, path, remoteAddr, forwarded string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	h := RateLimit(smallLimiter(clock, false))(&captureHandler{})

	rec := limitedRequest(h, "/api/search", "10.0.0.1:5000", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1704110430", rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitMiddleware_DeniedReturnsProblem(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	next := &captureHandler{}
	h := RateLimit(smallLimiter(clock, false))(next)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, limitedRequest(h, "/api/search", "10.0.0.1:1", "").Code)
	}
	next.called = false

	rec := limitedRequest(h, "/api/search", "10.0.0.1:1", "")

	assert.False(t, next.called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem model.ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, model.ErrCodeRateLimited, problem.Code)
	assert.Contains(t, problem.Detail, "30 seconds")
}

func TestRateLimitMiddleware_ClientKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		trustForwarded bool
		first, second  [2]string // remote addr, X-Forwarded-For
		shared         bool
	}{
		{"port ignored", false, [2]string{"10.0.0.1:1111", ""}, [2]string{"10.0.0.1:2222", ""}, true},
		{"hosts differ", false, [2]string{"10.0.0.1:1", ""}, [2]string{"10.0.0.2:1", ""}, false},
		{"forwarded ignored by default", false, [2]string{"10.0.0.1:1", "1.1.1.1"}, [2]string{"10.0.0.1:1", "2.2.2.2"}, true},
		{"forwarded first hop", true, [2]string{"10.0.0.1:1", "1.1.1.1, 10.0.0.1"}, [2]string{"10.0.0.9:1", " 1.1.1.1 "}, true},
		{"forwarded hosts differ", true, [2]string{"10.0.0.1:1", "1.1.1.1"}, [2]string{"10.0.0.1:1", "2.2.2.2"}, false},
		{"address without port", false, [2]string{"pipe", ""}, [2]string{"pipe", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := RateLimit(smallLimiter(newFakeClock(), tt.trustForwarded))(&captureHandler{})

			limitedRequest(h, "/api/search", tt.first[0], tt.first[1])
			rec := limitedRequest(h, "/api/search", tt.second[0], tt.second[1])

			want := "2"
			if tt.shared {
				want = "1"
			}
			assert.Equal(t, want, rec.Header().Get("X-RateLimit-Remaining"))
		})
	}
}

func TestRateLimitMiddleware_SkipsHealthAndMetrics(t *testing.T) {
	t.Parallel()
	rl := smallLimiter(newFakeClock(), false)
	h := RateLimit(rl)(&captureHandler{})

	for i := 0; i < 10; i++ {
		for _, path := range []string{"/health", "/metrics"} {
			rec := limitedRequest(h, path, "10.0.0.1:1", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	}
	assert.Zero(t, rl.clientCount())
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	t.Parallel()
	next := &captureHandler{}

	rec := limitedRequest(RateLimit(nil)(next), "/api/search", "10.0.0.1:1", "")

	assert.True(t, next.called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
