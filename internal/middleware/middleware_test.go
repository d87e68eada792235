package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/junkd0g/streakcal/internal/logger"
)

func newEcho(mw echo.MiddlewareFunc, h echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw)
	if h == nil {
		h = func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	}
	e.GET("/test", h)
	return e
}

func get(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(10), 10)
	defer rl.Close()
	e := newEcho(rl.Middleware(), nil)

	for range 10 {
		assert.Equal(t, http.StatusOK, get(e, "").Code)
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Close()
	e := newEcho(rl.Middleware(), nil)

	assert.Equal(t, http.StatusOK, get(e, "").Code)

	rec := get(e, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_DifferentIPsGetSeparateLimits(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Close()
	e := newEcho(rl.Middleware(), nil)

	assert.Equal(t, http.StatusOK, get(e, "1.2.3.4:1234").Code)
	assert.Equal(t, http.StatusOK, get(e, "5.6.7.8:5678").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "1.2.3.4:1234").Code)
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Close()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("1.2.3.4")
	now = now.Add(limiterIdleTimeout + time.Second)
	rl.getLimiter("5.6.7.8")
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "1.2.3.4")
	assert.Contains(t, rl.limiters, "5.6.7.8")
}

func TestRateLimiter_CloseTwice(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	rl.Close()
	assert.NotPanics(t, rl.Close)
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	e := newEcho(RequestID(), func(c echo.Context) error {
		seen = logger.RequestID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	rec := get(e, "")
	id := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestRequestID_Propagated(t *testing.T) {
	e := newEcho(RequestID(), nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLength+1), rec.Header().Get(echo.HeaderXRequestID))
}

func TestTraceContext_LogLineCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger.New(&buf, "info")

	e := echo.New()
	e.Use(TraceContext(propagation.TraceContext{}), RequestID())
	e.GET("/test", func(c echo.Context) error {
		slog.InfoContext(c.Request().Context(), "handled")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(echo.HeaderXRequestID, "req-7")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
	assert.Equal(t, "req-7", line["request_id"])
}

func TestTraceContext_NoHeader(t *testing.T) {
	var valid bool
	e := newEcho(TraceContext(propagation.TraceContext{}), func(c echo.Context) error {
		valid = trace.SpanContextFromContext(c.Request().Context()).IsValid()
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(e, "").Code)
	assert.False(t, valid)
}
