package handler

import (
	"fmt"
	"time"

	"github.com/junkd0g/streakcal/internal/badge"
)

// CachePolicy decides the Cache-Control header and render cache lifetime
// for each outcome.
type CachePolicy struct {
	// NoStore disables both client caching and the render cache.
	NoStore  bool
	Success  time.Duration
	NotFound time.Duration
	Error    time.Duration
}

// MaxAge returns how long a response with outcome o stays fresh.
func (p CachePolicy) MaxAge(o badge.Outcome) time.Duration {
	if p.NoStore {
		return 0
	}
	switch o {
	case badge.Success:
		return p.Success
	case badge.UpstreamNotFound:
		return p.NotFound
	default:
		return p.Error
	}
}

// Header returns the Cache-Control value for outcome o.
func (p CachePolicy) Header(o badge.Outcome) string {
	seconds := int64(p.MaxAge(o) / time.Second)
	if seconds <= 0 {
		return "no-store, max-age=0"
	}
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d", seconds, seconds)
}

// Storable reports whether a result with outcome o goes into the render
// cache. Input errors are cheap to redo and upstream errors are transient.
func (p CachePolicy) Storable(o badge.Outcome) bool {
	if p.NoStore {
		return false
	}
	return o == badge.Success || o == badge.UpstreamNotFound
}
