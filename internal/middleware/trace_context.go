package middleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TraceContext extracts incoming W3C trace headers (traceparent, baggage)
// into the request context so logs and upstream calls join the caller's
// trace. A nil propagator uses the global one.
func TraceContext(p propagation.TextMapPropagator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			prop := p
			if prop == nil {
				prop = otel.GetTextMapPropagator()
			}
			req := c.Request()
			ctx := prop.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
