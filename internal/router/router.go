package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
	"github.com/FabioHAraujo/ag-sistemas/internal/handler"
	"github.com/FabioHAraujo/ag-sistemas/internal/middleware"
	"github.com/FabioHAraujo/ag-sistemas/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterApplications registers the application intake endpoint and the
// admin review endpoints. Intake is public (rate limited); listing and
// decisions require a valid session with the ADMIN role.
func RegisterApplications(e *echo.Echo, a *handler.ApplicationHandler, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Public submission, rate limited to slow down abuse from a single IP.
	e.POST("/v1/applications", a.Submit, middleware.RateLimit(rlCfg, rdb))

	// Admin-only review surface. JWTAuth must run before RequireRole so the
	// role claim is in the context when the gate checks it.
	admin := e.Group("/v1/applications")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("", a.List)
	admin.POST("/:id/approve", a.Approve)
	admin.POST("/:id/reject", a.Reject)
}

// RegisterAuth registers registration and session endpoints. Register,
// login and logout are unauthenticated (register authenticates via the
// one-time token in the body); /v1/auth/me requires a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, middleware.RateLimit(rlCfg, rdb))
	g.POST("/login", a.Login, middleware.RateLimit(rlCfg, rdb))
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(cfg.JWTSecret))
}
