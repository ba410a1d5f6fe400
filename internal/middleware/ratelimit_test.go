package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
)

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	mw := RateLimit(cfg, nil)

	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Without a Redis client every request passes, even beyond the limit.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/applications", nil)
		rec := httptest.NewRecorder()
		assert.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitSubSecondWindowFailsOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: 500 * time.Millisecond, Prefix: "rl"}
	// Unreachable Redis: the window arithmetic runs, then Incr fails and the
	// request falls through.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	mw := RateLimit(cfg, rdb)

	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodPost, "/v1/applications", nil)
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		assert.NoError(t, handler(e.NewContext(req, rec)))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDisabledIsNoop(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Limit: 1, Window: time.Minute}
	mw := RateLimit(cfg, nil)

	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
