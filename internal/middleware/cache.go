package middleware

import (
	"github.com/labstack/echo/v4"
)

// NoStore returns an Echo middleware that marks responses as uncacheable.
// Headers are set before the handler runs so error responses carry them too.
func NoStore() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
			return next(c)
		}
	}
}
