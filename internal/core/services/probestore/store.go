// Package probestore is the probe store facade in front of a persistence
// backend. It bounds every call with a timeout, trips a circuit breaker when
// the backend keeps failing and always hands callers usable defaults.
package probestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/realrushil/website/internal/core/domain"
	"github.com/realrushil/website/internal/core/ports"
	"github.com/realrushil/website/internal/logging"
	"github.com/realrushil/website/internal/telemetry"
)

// Options tunes the facade.
type Options struct {
	Timeout          time.Duration // per backend call
	HistoryCap       int
	FailureThreshold uint32        // consecutive failures before the breaker opens
	OpenFor          time.Duration // how long the breaker stays open
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.HistoryCap <= 0 {
		o.HistoryCap = domain.DefaultHistoryCap
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
	if o.OpenFor <= 0 {
		o.OpenFor = 30 * time.Second
	}
	return o
}

// Store implements ports.ProbeStore.
type Store struct {
	repo    ports.ProbeRepository
	breaker *gobreaker.CircuitBreaker[any]
	opts    Options
}

// New wraps repo.
func New(repo ports.ProbeRepository, opts Options) *Store {
	opts = opts.withDefaults()
	name := "store-" + repo.Name()

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.BreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("store circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation is not a backend failure
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	telemetry.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &Store{repo: repo, breaker: breaker, opts: opts}
}

// Backend names the wrapped repository.
func (s *Store) Backend() string { return s.repo.Name() }

// HistoryCap is the configured history bound.
func (s *Store) HistoryCap() int { return s.opts.HistoryCap }

// Record persists reading. The write is detached from the caller's
// cancellation so a sensor hanging up does not abort it, but it is still
// bounded by the store timeout.
func (s *Store) Record(ctx context.Context, reading domain.Reading) error {
	_, err := call(s, context.WithoutCancel(ctx), "record", struct{}{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Record(ctx, reading, s.opts.HistoryCap)
	})
	return err
}

// ReadLatest returns nil alongside any error.
func (s *Store) ReadLatest(ctx context.Context) (*domain.Reading, error) {
	return call(s, ctx, "latest", (*domain.Reading)(nil), s.repo.Latest)
}

// ReadHistory returns at most limit entries, never more than the cap.
func (s *Store) ReadHistory(ctx context.Context, limit int) ([]domain.Reading, error) {
	if limit > s.opts.HistoryCap {
		limit = s.opts.HistoryCap
	}
	if limit <= 0 {
		return []domain.Reading{}, nil
	}
	return call(s, ctx, "history", []domain.Reading{}, func(ctx context.Context) ([]domain.Reading, error) {
		return s.repo.History(ctx, limit)
	})
}

func (s *Store) ReadStats(ctx context.Context) (domain.Stats, error) {
	return call(s, ctx, "stats", domain.NewStats(), s.repo.Stats)
}

// ReadSnapshot reads latest, the full capped history and stats consistently.
func (s *Store) ReadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	return call(s, ctx, "snapshot", domain.EmptySnapshot(), func(ctx context.Context) (domain.Snapshot, error) {
		return s.repo.Snapshot(ctx, s.opts.HistoryCap)
	})
}

// Ping checks the backend through the breaker.
func (s *Store) Ping(ctx context.Context) error {
	_, err := call(s, ctx, "ping", struct{}{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Ping(ctx)
	})
	return err
}

func (s *Store) Close() error {
	return s.repo.Close()
}

// call runs fn through the breaker with the store timeout. On any failure it
// returns fallback and an error wrapping domain.ErrStorageUnavailable.
func call[T any](s *Store, ctx context.Context, op string, fallback T, fn func(context.Context) (T, error)) (T, error) {
	backend := s.repo.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	out, err := s.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	telemetry.StoreLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.StoreOperations.WithLabelValues(backend, op, "error").Inc()
		return fallback, fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
	}
	telemetry.StoreOperations.WithLabelValues(backend, op, "ok").Inc()

	v, ok := out.(T)
	if !ok {
		return fallback, nil
	}
	return v, nil
}
