// Package ratelimit implements per-source sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"

	"github.com/realrushil/website/internal/telemetry"
)

// UnknownSource is the key used when the caller cannot identify the source.
const UnknownSource = "unknown"

type window struct {
	stamps []time.Time
	span   time.Duration // window length of the most recent check
}

// Limiter keeps, per source key, the instants of admitted requests inside the
// trailing window.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates an empty Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records an attempt from sourceKey and reports whether it is allowed.
// Denied attempts are not recorded.
func (l *Limiter) Admit(sourceKey string, maxRequests int, span time.Duration) bool {
	if sourceKey == "" {
		sourceKey = UnknownSource
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.windows[sourceKey]
	if w == nil {
		w = &window{}
		l.windows[sourceKey] = w
	}
	w.span = span
	w.stamps = prune(w.stamps, now.Add(-span))

	if len(w.stamps) >= maxRequests {
		if len(w.stamps) == 0 {
			delete(l.windows, sourceKey)
		}
		return false
	}

	w.stamps = append(w.stamps, now)
	return true
}

// Sweep drops expired timestamps for every key and removes empty windows.
// It returns the number of keys still tracked.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		w.stamps = prune(w.stamps, now.Add(-w.span))
		if len(w.stamps) == 0 {
			delete(l.windows, key)
		}
	}
	telemetry.RateLimiterKeys.Set(float64(len(l.windows)))
	return len(l.windows)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// prune removes stamps at or before cutoff. Stamps are appended in clock
// order, so the survivors are a suffix.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	kept := make([]time.Time, len(stamps)-i)
	copy(kept, stamps[i:])
	return kept
}
