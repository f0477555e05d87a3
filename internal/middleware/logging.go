// Package middleware provides Echo middleware for logging, caching, metrics and security.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// healthPaths are logged at debug level so liveness checks do not flood the log.
var healthPaths = map[string]bool{
	"/healthz":      true,
	"/proxy/status": true,
}

// RequestLogger returns an Echo middleware that logs each request with slog.
// Request headers are never logged; they carry the caller's session cookie.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render the error now so the logged status is the one sent.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			level := slog.LevelInfo
			if healthPaths[req.URL.Path] {
				level = slog.LevelDebug
			}

			logger.Log(context.Background(), level, "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_out", res.Size,
				"has_cookie", req.Header.Get(echo.HeaderCookie) != "",
			)

			return err
		}
	}
}
