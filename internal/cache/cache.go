// Package cache stores rendered images for the HTTP layer. Entries are keyed
// by identifier, format and calendar day so a new day always re-renders.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when no live entry exists.
var ErrMiss = errors.New("cache miss")

// Entry is one cached response.
type Entry struct {
	Outcome     string `json:"outcome"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache stores entries for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Close() error
}

// Key builds the cache key for one identifier, format and day.
func Key(identifier, format string, day time.Time) string {
	return fmt.Sprintf("streakcal:%s:%s:%s", format, day.Format(time.DateOnly), identifier)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*Entry, error) { return nil, ErrMiss }
func (Nop) Set(context.Context, string, Entry, time.Duration) error { return nil }
func (Nop) Close() error { return nil }
