package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDContextKey = "user_id"

// Middleware validates the Bearer token on every request and stores the
// authenticated user ID in the Echo context.
func (ts *TokenService) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}

			claims, err := ts.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(userIDContextKey, claims.UserID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user ID set by Middleware, or zero on
// an unauthenticated context.
func GetUserID(c echo.Context) int64 {
	id, _ := c.Get(userIDContextKey).(int64)
	return id
}
