package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/realrushil/website/internal/core/domain"
)

// MemoryRepository keeps the probe state in process. Writers serialize on a
// mutex and publish a fresh snapshot; readers load it without locking.
type MemoryRepository struct {
	mu    sync.Mutex
	state atomic.Pointer[domain.Snapshot]
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{}
	empty := domain.EmptySnapshot()
	r.state.Store(&empty)
	return r
}

func (r *MemoryRepository) Name() string { return BackendMemory }

func (r *MemoryRepository) Record(ctx context.Context, reading domain.Reading, historyCap int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	latest := reading.Clone()
	next := &domain.Snapshot{
		Latest:  &latest,
		History: domain.PrependCapped(cur.History, reading.Clone(), historyCap),
		Stats:   cur.Stats.Apply(reading),
	}
	r.state.Store(next)
	return nil
}

func (r *MemoryRepository) Snapshot(ctx context.Context, historyLimit int) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmptySnapshot(), err
	}
	cur := r.state.Load()
	return copySnapshot(cur, historyLimit), nil
}

func (r *MemoryRepository) Latest(ctx context.Context) (*domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cur := r.state.Load()
	if cur.Latest == nil {
		return nil, nil
	}
	latest := cur.Latest.Clone()
	return &latest, nil
}

func (r *MemoryRepository) History(ctx context.Context, limit int) ([]domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return []domain.Reading{}, err
	}
	return cloneReadings(domain.Head(r.state.Load().History, limit)), nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (domain.Stats, error) {
	if err := ctx.Err(); err != nil {
		return domain.NewStats(), err
	}
	return r.state.Load().Stats.Clone(), nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}

func copySnapshot(s *domain.Snapshot, historyLimit int) domain.Snapshot {
	out := domain.Snapshot{
		History: cloneReadings(domain.Head(s.History, historyLimit)),
		Stats:   s.Stats.Clone(),
	}
	if s.Latest != nil {
		latest := s.Latest.Clone()
		out.Latest = &latest
	}
	return out
}

func cloneReadings(in []domain.Reading) []domain.Reading {
	out := make([]domain.Reading, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
