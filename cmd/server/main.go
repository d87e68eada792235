package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/junkd0g/streakcal/internal/badge"
	"github.com/junkd0g/streakcal/internal/cache"
	"github.com/junkd0g/streakcal/internal/config"
	"github.com/junkd0g/streakcal/internal/handler"
	"github.com/junkd0g/streakcal/internal/logger"
	"github.com/junkd0g/streakcal/internal/metrics"
	appmiddleware "github.com/junkd0g/streakcal/internal/middleware"
	"github.com/junkd0g/streakcal/internal/profile"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	logger.Init()

	// W3C Trace Context for incoming headers and upstream calls
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"profile_api_url", cfg.ProfileAPIURL,
		"port", cfg.Port,
		"weeks", cfg.TotalWeeks,
		"timezone", cfg.Location.String(),
		"cache_mode", cfg.CacheMode,
		"render_cache", cfg.RenderCache)

	renderCache, err := newRenderCache(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize render cache", "error", err)
		os.Exit(1)
	}
	defer renderCache.Close()

	client := profile.NewClient(cfg.ProfileAPIURL, cfg.UpstreamTimeout)
	svc := badge.NewService(client, badge.Config{
		Theme:         cfg.Theme,
		Weeks:         cfg.TotalWeeks,
		Location:      cfg.Location,
		DefaultFormat: cfg.DefaultFormat,
	})

	streakHandler := handler.NewStreakHandler(svc, renderCache, handler.CachePolicy{
		NoStore:  cfg.CacheMode == config.CacheModeNoStore,
		Success:  cfg.RevalidateInterval,
		NotFound: cfg.NotFoundMaxAge,
		Error:    cfg.ErrorMaxAge,
	})
	healthHandler := handler.NewHealthHandler(renderCache)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(appmiddleware.TraceContext(otel.GetTextMapPropagator()))
	e.Use(appmiddleware.RequestID())

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	streakRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer streakRL.Close()

	e.GET("/api/streak", streakHandler.Handle, streakRL.Middleware())
	e.GET("/health", healthHandler.Handle)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting streakcal server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// newRenderCache builds the configured render cache backend.
func newRenderCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.RenderCache {
	case config.RenderCacheRedis:
		c, err := cache.NewRedisWithURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			// the handler treats cache errors as misses, so keep serving
			slog.WarnContext(ctx, "redis not reachable at startup", "error", err)
		}
		return c, nil
	case config.RenderCacheNone:
		return cache.Nop{}, nil
	default:
		return cache.NewMemory(time.Minute), nil
	}
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
