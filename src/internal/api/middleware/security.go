package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
)

// Security returns security headers middleware
func Security(cfg *viper.Viper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()

			res.Header().Set("X-Content-Type-Options", "nosniff")
			res.Header().Set("X-Frame-Options", "DENY")
			res.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// HSTS for HTTPS
			if c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https" {
				res.Header().Set("Strict-Transport-Security",
					"max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}
