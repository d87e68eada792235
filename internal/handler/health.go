package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/junkd0g/streakcal/internal/cache"
)

const healthPingTimeout = 2 * time.Second

// pinger is implemented by cache backends that sit behind a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// HealthHandler reports liveness and the state of the render cache.
type HealthHandler struct {
	cache cache.Cache
}

// NewHealthHandler creates a health handler for the given render cache.
func NewHealthHandler(c cache.Cache) *HealthHandler {
	return &HealthHandler{cache: c}
}

// Handle answers 200 while the process serves images. An unreachable cache
// only degrades the report, since lookups fall through to rendering.
func (h *HealthHandler) Handle(c echo.Context) error {
	report := HealthReport{Status: "healthy", Cache: "none"}

	switch backend := h.cache.(type) {
	case nil, cache.Nop:
	case pinger:
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := backend.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "render cache ping failed", "error", err)
			report.Status = "degraded"
			report.Cache = "unreachable"
		} else {
			report.Cache = "ok"
		}
	default:
		report.Cache = "ok"
	}

	return c.JSON(http.StatusOK, report)
}
