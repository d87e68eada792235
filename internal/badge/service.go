// Package badge turns a username into a rendered streak card, degrading to
// a same-sized placeholder image on every failure.
package badge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/junkd0g/streakcal/internal/calendar"
	"github.com/junkd0g/streakcal/internal/metrics"
	"github.com/junkd0g/streakcal/internal/profile"
	"github.com/junkd0g/streakcal/internal/render"
)

// Fetcher loads a profile by username.
type Fetcher interface {
	Fetch(ctx context.Context, username string) (*profile.Profile, error)
}

// Config holds the tunables of a Service.
type Config struct {
	Theme         calendar.Theme
	Weeks         int
	Location      *time.Location
	Layout        render.Layout
	DefaultFormat render.Format
	// Now is the clock used to find today's weekday. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the public badge configuration.
func DefaultConfig() Config {
	return Config{
		Theme:         calendar.DefaultTheme(),
		Weeks:         calendar.DefaultWeeks,
		Location:      time.UTC,
		Layout:        render.DefaultLayout(),
		DefaultFormat: render.FormatSVG,
		Now:           time.Now,
	}
}

// Request is one render request as received from a caller.
type Request struct {
	Username string
	Format   string
}

// Result is the rendered artifact. Body is always a complete image.
type Result struct {
	Outcome     Outcome
	Username    string
	Format      render.Format
	ContentType string
	Body        []byte
	Streak      int
	Counted     int
	MaxCount    int
}

// Service renders streak cards.
type Service struct {
	fetcher Fetcher
	cfg     Config
	group   singleflight.Group
}

// NewService creates a Service. Zero values in cfg fall back to DefaultConfig.
func NewService(fetcher Fetcher, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.Weeks < 1 {
		cfg.Weeks = def.Weeks
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.Layout.Width == 0 || cfg.Layout.Height == 0 {
		cfg.Layout = def.Layout
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = def.DefaultFormat
	}
	if cfg.Theme == (calendar.Theme{}) {
		cfg.Theme = def.Theme
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Service{fetcher: fetcher, cfg: cfg}
}

// DefaultFormat returns the format used when a request names none.
func (s *Service) DefaultFormat() render.Format {
	return s.cfg.DefaultFormat
}

// Now returns the current time in the configured location.
func (s *Service) Now() time.Time {
	return s.cfg.Now().In(s.cfg.Location)
}

// Today returns the weekday the grid is anchored on.
func (s *Service) Today() time.Weekday {
	return s.Now().Weekday()
}

// Render runs one request to completion. It never fails: every error is
// turned into a fallback image carrying the matching Outcome.
func (s *Service) Render(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = s.fallback(ctx, s.cfg.DefaultFormat, fmt.Errorf("render panicked: %v", r))
		}
		metrics.ObserveRender(res.Outcome.String(), string(res.Format), time.Since(start))
	}()
	return s.render(ctx, req)
}

func (s *Service) render(ctx context.Context, req Request) Result {
	format := s.cfg.DefaultFormat
	var formatErr error
	if req.Format != "" {
		if f, err := render.ParseFormat(req.Format); err != nil {
			formatErr = fmt.Errorf("%w: %w", ErrInvalidInput, err)
		} else {
			format = f
		}
	}

	// a missing username outranks a bad format
	username, err := ValidateUsername(req.Username)
	if err != nil {
		return s.fallback(ctx, format, err)
	}
	if formatErr != nil {
		return s.fallback(ctx, format, formatErr)
	}

	p, err := s.fetch(ctx, username)
	if err != nil {
		res := s.fallback(ctx, format, err)
		res.Username = username
		return res
	}

	res, err := s.RenderProfile(ctx, p, format)
	if err != nil {
		res = s.fallback(ctx, format, err)
		res.Username = username
	}
	return res
}

// RenderProfile draws an already fetched profile.
func (s *Service) RenderProfile(ctx context.Context, p *profile.Profile, format render.Format) (Result, error) {
	r, err := render.New(format, s.cfg.Layout)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	grid := calendar.Build(p.Activity, s.Today(), s.cfg.Weeks, s.cfg.Theme)
	card := render.Card{
		Username: p.Username,
		Streak:   p.Streak,
		Grid:     grid,
		Theme:    s.cfg.Theme,
	}

	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, card); err != nil {
		return Result{}, fmt.Errorf("failed to render %s card: %w", format, err)
	}

	return Result{
		Outcome:     Success,
		Username:    p.Username,
		Format:      format,
		ContentType: r.ContentType(),
		Body:        buf.Bytes(),
		Streak:      p.Streak,
		Counted:     grid.Counted,
		MaxCount:    grid.MaxCount,
	}, nil
}

func (s *Service) fetch(ctx context.Context, username string) (*profile.Profile, error) {
	start := time.Now()
	v, err, shared := s.group.Do(username, func() (any, error) {
		return s.fetcher.Fetch(ctx, username)
	})
	metrics.ObserveUpstream(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "profile fetch shared", "username", username)
	}
	return v.(*profile.Profile), nil
}

// fallback renders the placeholder for err in format, falling back to SVG
// when the requested renderer cannot produce it.
func (s *Service) fallback(ctx context.Context, format render.Format, err error) Result {
	outcome := OutcomeFor(err)
	if outcome == Success {
		outcome = UpstreamError
	}

	level := slog.LevelWarn
	if outcome == UpstreamError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "rendering fallback image",
		"outcome", outcome.String(),
		"format", string(format),
		"error", err)

	res := Result{Outcome: outcome, Format: format}

	r, rerr := render.New(format, s.cfg.Layout)
	if rerr == nil {
		var buf bytes.Buffer
		if rerr = r.RenderFallback(ctx, &buf, outcome.Message(), s.cfg.Theme); rerr == nil {
			res.ContentType = r.ContentType()
			res.Body = buf.Bytes()
			return res
		}
	}

	slog.ErrorContext(ctx, "fallback renderer failed, using svg", "format", string(format), "error", rerr)
	svg := render.NewSVGRenderer(s.cfg.Layout)
	var buf bytes.Buffer
	_ = svg.RenderFallback(ctx, &buf, outcome.Message(), s.cfg.Theme)
	res.Format = render.FormatSVG
	res.ContentType = svg.ContentType()
	res.Body = buf.Bytes()
	return res
}
