// Package status composes probe store reads and the occupancy estimate into
// the JSON and HTML status views.
package status

import (
	"context"
	"io"
	"time"

	"github.com/realrushil/website/internal/core/domain"
	"github.com/realrushil/website/internal/core/ports"
	"github.com/realrushil/website/internal/core/services/occupancy"
	"github.com/realrushil/website/internal/logging"
)

// Endpoints advertised in the JSON status.
var Endpoints = map[string]string{
	"main_site":      "/",
	"probe_endpoint": "/ (POST)",
	"status_json":    "/status",
	"status_html":    "/status?format=html",
	"health":         "/health",
	"live_feed":      "/ws",
	"metrics":        "/metrics",
}

// ServerInfo describes this process.
type ServerInfo struct {
	Timestamp string  `json:"timestamp"`
	Platform  string  `json:"platform"`
	Uptime    float64 `json:"uptime"` // seconds
}

// Payload is the JSON status document.
type Payload struct {
	ServerInfo ServerInfo           `json:"server_info"`
	ProbeData  domain.Snapshot      `json:"probe_data"`
	Endpoints  map[string]string    `json:"endpoints"`
	Occupancy  domain.OccupancyView `json:"occupancy"`
}

// Health is the liveness document.
type Health struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Platform  string  `json:"platform"`
	Uptime    float64 `json:"uptime"`
}

// Assembler builds status views. Storage trouble degrades to empty data and
// is never returned as a failure.
type Assembler struct {
	store     ports.ProbeStore
	estimator *occupancy.Estimator
	renderer  ports.DashboardRenderer
	platform  string
	started   time.Time
	now       func() time.Time
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithStartTime sets the instant uptime is measured from.
func WithStartTime(t time.Time) Option {
	return func(a *Assembler) { a.started = t }
}

// NewAssembler creates an assembler. renderer may be nil when only JSON is
// served.
func NewAssembler(store ports.ProbeStore, estimator *occupancy.Estimator, renderer ports.DashboardRenderer, platform string, opts ...Option) *Assembler {
	a := &Assembler{
		store:     store,
		estimator: estimator,
		renderer:  renderer,
		platform:  platform,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.started.IsZero() {
		a.started = a.now()
	}
	return a
}

// Uptime since the assembler was created.
func (a *Assembler) Uptime() time.Duration {
	return a.now().Sub(a.started)
}

// Payload reads one snapshot and derives the JSON document from it.
func (a *Assembler) Payload(ctx context.Context) Payload {
	snap := a.snapshot(ctx)
	now := a.now()
	return Payload{
		ServerInfo: ServerInfo{
			Timestamp: domain.FormatISO(now),
			Platform:  a.platform,
			Uptime:    now.Sub(a.started).Seconds(),
		},
		ProbeData: snap,
		Endpoints: Endpoints,
		Occupancy: a.estimator.Estimate(snap.Latest),
	}
}

// View is the data a dashboard renderer consumes.
func (a *Assembler) View(ctx context.Context) domain.DashboardView {
	snap := a.snapshot(ctx)
	now := a.now()
	return domain.DashboardView{
		Latest:      snap.Latest,
		Stats:       snap.Stats,
		History:     snap.History,
		Occupancy:   a.estimator.Estimate(snap.Latest),
		Updated:     occupancy.FormatReadingAge(snap.Latest, now),
		GeneratedAt: now,
		Uptime:      now.Sub(a.started),
		Platform:    a.platform,
	}
}

// RenderHTML writes the dashboard for the current state.
func (a *Assembler) RenderHTML(ctx context.Context, w io.Writer) error {
	return a.renderer.Render(w, a.View(ctx))
}

// Health reports liveness. It does not touch storage.
func (a *Assembler) Health() Health {
	now := a.now()
	return Health{
		Status:    "ok",
		Timestamp: domain.FormatISO(now),
		Platform:  a.platform,
		Uptime:    now.Sub(a.started).Seconds(),
	}
}

func (a *Assembler) snapshot(ctx context.Context) domain.Snapshot {
	snap, err := a.store.ReadSnapshot(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("status read degraded to empty data")
		return domain.EmptySnapshot()
	}
	if snap.History == nil {
		snap.History = []domain.Reading{}
	}
	snap.Stats = snap.Stats.Normalize()
	return snap
}
