package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/streakcal/internal/calendar"
	"github.com/junkd0g/streakcal/internal/render"
)

var envKeys = []string{
	"PORT", "PROFILE_API_URL", "UPSTREAM_TIMEOUT", "TOTAL_WEEKS", "TIMEZONE",
	"CACHE_MODE", "REVALIDATE_INTERVAL", "NOT_FOUND_MAX_AGE", "ERROR_MAX_AGE",
	"RENDER_CACHE", "REDIS_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"THEME_FILE", "DEFAULT_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		t.Setenv(key+"_FILE", "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.monkeytype.com", cfg.ProfileAPIURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, calendar.DefaultWeeks, cfg.TotalWeeks)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, CacheModeRevalidate, cfg.CacheMode)
	assert.Equal(t, 4*time.Hour, cfg.RevalidateInterval)
	assert.Equal(t, 24*time.Hour, cfg.NotFoundMaxAge)
	assert.Equal(t, time.Hour, cfg.ErrorMaxAge)
	assert.Equal(t, RenderCacheMemory, cfg.RenderCache)
	assert.Equal(t, render.FormatSVG, cfg.DefaultFormat)
	assert.Equal(t, calendar.DefaultTheme(), cfg.Theme)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOTAL_WEEKS", "26")
	t.Setenv("CACHE_MODE", "no-store")
	t.Setenv("REVALIDATE_INTERVAL", "15m")
	t.Setenv("DEFAULT_FORMAT", "png")
	t.Setenv("RENDER_CACHE", "none")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 26, cfg.TotalWeeks)
	assert.Equal(t, CacheModeNoStore, cfg.CacheMode)
	assert.Equal(t, 15*time.Minute, cfg.RevalidateInterval)
	assert.Equal(t, render.FormatPNG, cfg.DefaultFormat)
	assert.Equal(t, RenderCacheNone, cfg.RenderCache)
}

func TestLoad_FileSuffix(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "url")
	require.NoError(t, os.WriteFile(path, []byte("https://profiles.internal\n"), 0o600))
	t.Setenv("PROFILE_API_URL_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://profiles.internal", cfg.ProfileAPIURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"UPSTREAM_TIMEOUT", "soon"},
		{"UPSTREAM_TIMEOUT", "-1s"},
		{"TOTAL_WEEKS", "0"},
		{"TOTAL_WEEKS", "many"},
		{"CACHE_MODE", "forever"},
		{"RENDER_CACHE", "disk"},
		{"RATE_LIMIT_RPS", "0"},
		{"TIMEZONE", "Mars/Olympus"},
		{"DEFAULT_FORMAT", "gif"},
		{"THEME_FILE", "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accent: \"#216e39\"\nzero_opacity: 0.2\n"), 0o600))

	theme, err := LoadTheme(path)
	require.NoError(t, err)

	assert.Equal(t, "#216e39", theme.Accent)
	assert.Equal(t, 0.2, theme.ZeroOpacity)
	assert.Equal(t, calendar.DefaultTheme().Background, theme.Background)
}

func TestLoad_ThemeMustKeepZeroDimmer(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zero_opacity: 0.5\nmin_intensity: 0.4\n"), 0o600))
	t.Setenv("THEME_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}
