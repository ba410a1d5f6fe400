package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
)

// RateLimit returns a fixed-window limiter keyed on client IP and route,
// backed by Redis so instances share state. The unauthenticated intake and
// login endpoints use it to slow down enumeration and brute-force attempts.
// The middleware fails open: when Redis is unavailable or disabled the
// request proceeds untouched.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			// Windows are counted in whole seconds; anything shorter
			// collapses to a one-second window.
			winSecs := int64(cfg.Window / time.Second)
			if winSecs < 1 {
				winSecs = 1
			}
			window := time.Now().Unix() / winSecs
			key := cfg.Prefix + ":" + ip + ":" + c.Request().Method + ":" + c.Path() + ":" + strconv.FormatInt(window, 10)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // fail open on Redis errors
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := int(winSecs)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}
