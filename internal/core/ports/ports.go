package ports

import (
	"context"
	"io"
	"time"

	"github.com/realrushil/website/internal/core/domain"
)

// Limiter admits or denies a request from a source identity.
type Limiter interface {
	Admit(sourceKey string, maxRequests int, window time.Duration) bool
}

// ProbeStore is the read/write surface the pipeline and status views use.
// Record never blocks telemetry on storage: a returned error wraps
// domain.ErrStorageUnavailable and is meant for logging only.
type ProbeStore interface {
	Record(ctx context.Context, reading domain.Reading) error
	ReadLatest(ctx context.Context) (*domain.Reading, error)
	ReadHistory(ctx context.Context, limit int) ([]domain.Reading, error)
	ReadStats(ctx context.Context) (domain.Stats, error)
	ReadSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// ReadingNotifier is told about every reading the pipeline accepts.
type ReadingNotifier interface {
	NotifyReading(ctx context.Context, reading domain.Reading)
}

// DashboardRenderer turns a dashboard view into markup.
type DashboardRenderer interface {
	Render(w io.Writer, view domain.DashboardView) error
}
