package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware guards the catalog management surface with a shared
// key. With no key configured the surface stays closed.
func AdminKeyMiddleware(adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Admin API is not configured")
			}

			presented := c.Request().Header.Get(adminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin key")
			}
			return next(c)
		}
	}
}
