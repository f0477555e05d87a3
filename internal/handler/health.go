package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"mega-user-proxy/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness checks.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status reports the build version and which optional features are on.
// It does not contact the upstream.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":          "ok",
		"version":         string(h.version),
		"upstream_url":    redactURL(h.cfg.Upstream.BaseURL),
		"metrics_enabled": h.cfg.Metrics.Enabled,
		"tracing_enabled": h.cfg.Tracing.Enabled,
	})
}

// redactURL masks any password in raw. Unparseable input yields "".
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
