package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontix/pkg/logger"
)

func newLimiter(t *testing.T, cfg *Config) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg)
}

func testConfig() *Config {
	return &Config{
		Enabled:            true,
		WindowDuration:     time.Minute,
		DefaultRequests:    5,
		PublicRequests:     10,
		StorefrontRequests: 3,
		CheckoutRequests:   2,
		AdminRequests:      50,
		AnalyticsRequests:  5,
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := newLimiter(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeStorefront)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeStorefront)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 3, res.Limit)

	// Budgets are per client and per type.
	res, err = rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeStorefront)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypePublic)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := newLimiter(t, testConfig())
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckout)
		require.NoError(t, err)
		require.True(t, res.Allowed)
		now = now.Add(time.Millisecond)
	}
	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckout)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = start.Add(time.Minute + time.Second)
	res, err = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckout)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiter_DisabledAndWhitelisted(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistedIPs = []string{"127.0.0.1"}
	rl := newLimiter(t, cfg)

	for i := 0; i < 5; i++ {
		res, err := rl.IsAllowed(context.Background(), "127.0.0.1", RateLimitTypeCheckout)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	cfg.Enabled = false
	for i := 0; i < 5; i++ {
		res, err := rl.IsAllowed(context.Background(), "10.9.9.9", RateLimitTypeCheckout)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/api/v1/events", RateLimitTypePublic},
		{"/api/v1/storefront/sessions/:id/seats", RateLimitTypeStorefront},
		{"/api/v1/storefront/sessions/:id/checkout/confirm", RateLimitTypeCheckout},
		{"/api/v1/admin/events", RateLimitTypeAdmin},
		{"/api/v1/admin/analytics", RateLimitTypeAnalytics},
		{"/api/v1/admin/dashboard", RateLimitTypeAnalytics},
		{"/swagger/*any", RateLimitTypeDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getRateLimitType(tt.path), tt.path)
	}
}

func TestMiddleware_RejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newLimiter(t, testConfig())

	r := gin.New()
	r.Use(Middleware(rl, logger.GetDefault()))
	r.POST("/api/v1/storefront/sessions/:id/checkout/confirm", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/storefront/sessions/abc/checkout/confirm", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, last.Body.String(), "Rate limit exceeded")
}
