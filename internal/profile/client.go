// Package profile fetches daily activity from the public Monkeytype profile API.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/junkd0g/streakcal/internal/calendar"
)

// Upstream errors.
var (
	ErrNotFound  = errors.New("profile not found")
	ErrUpstream  = errors.New("profile service unavailable")
	ErrDataShape = errors.New("profile has no activity field")
)

// maxBodyBytes bounds how much of a profile document is read.
const maxBodyBytes = 4 << 20

// Profile is the part of a user profile the card needs.
type Profile struct {
	Username string
	Streak   int
	Activity calendar.Log
}

type profileResponse struct {
	Data *struct {
		Streak       *float64 `json:"streak"`
		TestActivity *struct {
			TestsByDays []json.RawMessage `json:"testsByDays"`
		} `json:"testActivity"`
	} `json:"data"`
}

// Client talks to the profile API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// propagator injects trace headers; nil means the global propagator.
	propagator propagation.TextMapPropagator
}

// NewClient creates a client whose requests give up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch loads the profile of username. A profile without activity data is
// returned with an empty log.
func (c *Client) Fetch(ctx context.Context, username string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/users/%s/profile?isUid=false", c.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.textMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call profile service: %w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("profile service returned status %d: %w", resp.StatusCode, ErrUpstream)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w: %w", ErrUpstream, err)
	}

	profile, err := Decode(body)
	if errors.Is(err, ErrDataShape) {
		slog.WarnContext(ctx, "profile has no activity history", "username", username)
	} else if err != nil {
		return nil, err
	}
	profile.Username = username

	return profile, nil
}

func (c *Client) textMapPropagator() propagation.TextMapPropagator {
	if c.propagator != nil {
		return c.propagator
	}
	return otel.GetTextMapPropagator()
}

// Decode parses a profile document. When the activity field is missing the
// returned profile is still usable and the error wraps ErrDataShape.
func Decode(body []byte) (*Profile, error) {
	var doc profileResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w: %w", ErrUpstream, err)
	}

	profile := &Profile{Activity: calendar.Log{}}
	if doc.Data == nil {
		return profile, ErrDataShape
	}
	if doc.Data.Streak != nil {
		profile.Streak = int(max(0, *doc.Data.Streak))
	}
	if doc.Data.TestActivity == nil || doc.Data.TestActivity.TestsByDays == nil {
		return profile, ErrDataShape
	}

	profile.Activity = Sanitize(doc.Data.TestActivity.TestsByDays)
	return profile, nil
}

// Sanitize converts raw JSON elements into a log. null, non-numeric,
// fractional and negative elements become absent days.
func Sanitize(raw []json.RawMessage) calendar.Log {
	log := make(calendar.Log, len(raw))
	for i, elem := range raw {
		var v *float64
		if err := json.Unmarshal(elem, &v); err != nil || v == nil {
			continue
		}
		if *v < 0 || *v != math.Trunc(*v) || *v > math.MaxInt32 {
			continue
		}
		log[i] = calendar.Recorded(int(*v))
	}
	return log
}
