package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FabioHAraujo/ag-sistemas/internal/utils"
)

// SessionCookieName is the cookie that carries the session JWT. The same
// token may alternatively be presented as a bearer Authorization header.
const SessionCookieName = "auth-token"

// Context keys populated by JWTAuth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates the session credential
// from the auth-token cookie or, failing that, a Bearer Authorization
// header. On success it stores the subject ID, email and role in the
// request context; otherwise it responds 401 without detail about why the
// token was rejected.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw session token, preferring the cookie
// over the Authorization header.
func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// UserID returns the authenticated user's ID from the context, or false when
// the request did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	v, ok := c.Get(CtxUserID).(uint64)
	return v, ok
}
