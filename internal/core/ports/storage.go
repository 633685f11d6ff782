package ports

import (
	"context"

	"github.com/realrushil/website/internal/core/domain"
)

// ProbeRepository is a persistence backend for the probe store.
type ProbeRepository interface {
	// Record applies latest, history (capped at historyCap) and stats as one
	// atomic update.
	Record(ctx context.Context, reading domain.Reading, historyCap int) error

	// Snapshot reads latest, the first historyLimit history entries and stats
	// in one consistent read.
	Snapshot(ctx context.Context, historyLimit int) (domain.Snapshot, error)

	Latest(ctx context.Context) (*domain.Reading, error)
	History(ctx context.Context, limit int) ([]domain.Reading, error)
	Stats(ctx context.Context) (domain.Stats, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string

	// Close releases connections.
	Close() error
}
