// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/junkd0g/streakcal/internal/calendar"
	"github.com/junkd0g/streakcal/internal/render"
)

// Cache-Control modes.
const (
	CacheModeRevalidate = "revalidate"
	CacheModeNoStore    = "no-store"
)

// Render cache backends.
const (
	RenderCacheMemory = "memory"
	RenderCacheRedis  = "redis"
	RenderCacheNone   = "none"
)

// Config holds the application configuration
type Config struct {
	Port               string
	ProfileAPIURL      string        // base URL of the profile service
	UpstreamTimeout    time.Duration // hard limit for one profile fetch
	TotalWeeks         int
	Location           *time.Location // used to find today's weekday
	CacheMode          string
	RevalidateInterval time.Duration // max-age of successful renders
	NotFoundMaxAge     time.Duration
	ErrorMaxAge        time.Duration
	RenderCache        string
	RedisURL           string
	RateLimitRPS       float64
	RateLimitBurst     int
	DefaultFormat      render.Format
	Theme              calendar.Theme
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		ProfileAPIURL: getEnv("PROFILE_API_URL", "https://api.monkeytype.com"),
		CacheMode:     getEnv("CACHE_MODE", CacheModeRevalidate),
		RenderCache:   getEnv("RENDER_CACHE", RenderCacheMemory),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Theme:         calendar.DefaultTheme(),
	}

	var err error
	if cfg.UpstreamTimeout, err = getDurationEnv("UPSTREAM_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RevalidateInterval, err = getDurationEnv("REVALIDATE_INTERVAL", 4*time.Hour); err != nil {
		return nil, err
	}
	if cfg.NotFoundMaxAge, err = getDurationEnv("NOT_FOUND_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ErrorMaxAge, err = getDurationEnv("ERROR_MAX_AGE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.TotalWeeks, err = getIntEnv("TOTAL_WEEKS", calendar.DefaultWeeks); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getIntEnv("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloatEnv("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if cfg.DefaultFormat, err = render.ParseFormat(getEnv("DEFAULT_FORMAT", string(render.FormatSVG))); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_FORMAT: %w", err)
	}

	if path := getEnv("THEME_FILE", ""); path != "" {
		theme, err := LoadTheme(path)
		if err != nil {
			return nil, err
		}
		cfg.Theme = theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.ProfileAPIURL == "" {
		return fmt.Errorf("PROFILE_API_URL cannot be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.TotalWeeks < 1 {
		return fmt.Errorf("TOTAL_WEEKS must be at least 1")
	}
	if c.RevalidateInterval <= 0 || c.NotFoundMaxAge <= 0 || c.ErrorMaxAge <= 0 {
		return fmt.Errorf("REVALIDATE_INTERVAL, NOT_FOUND_MAX_AGE and ERROR_MAX_AGE must be positive")
	}
	switch c.CacheMode {
	case CacheModeRevalidate, CacheModeNoStore:
	default:
		return fmt.Errorf("CACHE_MODE must be %q or %q, got %q", CacheModeRevalidate, CacheModeNoStore, c.CacheMode)
	}
	switch c.RenderCache {
	case RenderCacheMemory, RenderCacheRedis, RenderCacheNone:
	default:
		return fmt.Errorf("RENDER_CACHE must be memory, redis or none, got %q", c.RenderCache)
	}
	if c.RenderCache == RenderCacheRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL cannot be empty when RENDER_CACHE=redis")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if err := c.Theme.Validate(); err != nil {
		return err
	}
	return nil
}

// LoadTheme reads a YAML theme file. Keys missing from the file keep the
// default theme's values.
func LoadTheme(path string) (calendar.Theme, error) {
	theme := calendar.DefaultTheme()
	raw, err := os.ReadFile(path)
	if err != nil {
		return theme, fmt.Errorf("failed to read theme file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &theme); err != nil {
		return theme, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	return theme, nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
