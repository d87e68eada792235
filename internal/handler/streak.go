// Package handler serves streak calendar images over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/junkd0g/streakcal/internal/badge"
	"github.com/junkd0g/streakcal/internal/cache"
	"github.com/junkd0g/streakcal/internal/metrics"
	"github.com/junkd0g/streakcal/internal/render"
)

const (
	headerCacheControl = "Cache-Control"
	headerCacheStatus  = "X-Cache"
	headerOutcome      = "X-Streak-Outcome"
)

// Renderer produces streak card images. It is satisfied by *badge.Service.
type Renderer interface {
	Render(ctx context.Context, req badge.Request) badge.Result
	DefaultFormat() render.Format
	Now() time.Time
}

// StreakHandler serves GET /api/streak.
type StreakHandler struct {
	renderer Renderer
	cache    cache.Cache
	policy   CachePolicy
}

// NewStreakHandler creates the handler. A nil cache disables render caching.
func NewStreakHandler(renderer Renderer, c cache.Cache, policy CachePolicy) *StreakHandler {
	if c == nil {
		c = cache.Nop{}
	}
	return &StreakHandler{renderer: renderer, cache: c, policy: policy}
}

// Handle renders the card for ?username= in ?format=. Every outcome is an
// image; the status code and Cache-Control header depend on the outcome.
func (h *StreakHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	req := badge.Request{
		Username: c.QueryParam("username"),
		Format:   c.QueryParam("format"),
	}

	key, cacheable := h.cacheKey(req)
	if cacheable {
		entry, err := h.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.CacheHit()
			return h.write(c, *entry, "HIT")
		case errors.Is(err, cache.ErrMiss):
			metrics.CacheMiss()
		default:
			metrics.CacheError()
			slog.WarnContext(ctx, "render cache lookup failed", "key", key, "error", err)
		}
	}

	res := h.renderer.Render(ctx, req)
	entry := cache.Entry{
		Outcome:     res.Outcome.String(),
		Status:      res.Outcome.Status(),
		ContentType: res.ContentType,
		Body:        res.Body,
	}

	if cacheable && h.policy.Storable(res.Outcome) {
		if err := h.cache.Set(ctx, key, entry, h.policy.MaxAge(res.Outcome)); err != nil {
			metrics.CacheError()
			slog.WarnContext(ctx, "render cache store failed", "key", key, "error", err)
		}
	}

	return h.write(c, entry, "MISS")
}

// cacheKey returns the render cache key, or false when the request cannot
// be cached because it is invalid or caching is off.
func (h *StreakHandler) cacheKey(req badge.Request) (string, bool) {
	if h.policy.NoStore {
		return "", false
	}
	username, err := badge.ValidateUsername(req.Username)
	if err != nil {
		return "", false
	}
	format := h.renderer.DefaultFormat()
	if req.Format != "" {
		if format, err = render.ParseFormat(req.Format); err != nil {
			return "", false
		}
	}
	return cache.Key(username, string(format), h.renderer.Now()), true
}

func (h *StreakHandler) write(c echo.Context, entry cache.Entry, cacheStatus string) error {
	outcome, ok := badge.ParseOutcome(entry.Outcome)
	if !ok {
		outcome = badge.UpstreamError
	}

	header := c.Response().Header()
	header.Set(headerCacheControl, h.policy.Header(outcome))
	header.Set(headerCacheStatus, cacheStatus)
	header.Set(headerOutcome, entry.Outcome)
	return c.Blob(entry.Status, entry.ContentType, entry.Body)
}
