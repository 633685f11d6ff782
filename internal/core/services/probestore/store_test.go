package probestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/realrushil/website/internal/adapters/storage"
	"github.com/realrushil/website/internal/core/domain"
)

// MockRepository implements ports.ProbeRepository for testing.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Record(ctx context.Context, reading domain.Reading, historyCap int) error {
	args := m.Called(ctx, reading, historyCap)
	return args.Error(0)
}

func (m *MockRepository) Snapshot(ctx context.Context, historyLimit int) (domain.Snapshot, error) {
	args := m.Called(ctx, historyLimit)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

func (m *MockRepository) Latest(ctx context.Context) (*domain.Reading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockRepository) History(ctx context.Context, limit int) ([]domain.Reading, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) Name() string { return "mock" }

func (m *MockRepository) Close() error { return nil }

var errBackend = errors.New("connection refused")

func sampleReading() domain.Reading {
	return domain.Reading{
		DeviceID:        "esp32-1",
		SensorTimestamp: domain.NumericTimestamp(1700000000),
		SSIDCounts:      domain.SSIDCounts{"Home-WiFi": 3, "Guest": 2},
	}.Enrich(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), "10.0.0.1")
}

func TestStore_RecordPassesHistoryCap(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{HistoryCap: 20})
	reading := sampleReading()

	repo.On("Record", mock.Anything, reading, 20).Return(nil)

	assert.NoError(t, s.Record(context.Background(), reading))
	repo.AssertExpectations(t)
}

func TestStore_RecordFailureWrapsStorageUnavailable(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{})

	repo.On("Record", mock.Anything, mock.Anything, domain.DefaultHistoryCap).Return(errBackend)

	err := s.Record(context.Background(), sampleReading())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, errBackend)
}

func TestStore_RecordSurvivesCallerCancellation(t *testing.T) {
	s := New(storage.NewMemoryRepository(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Record(ctx, sampleReading()))

	latest, err := s.ReadLatest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "esp32-1", latest.DeviceID)
}

func TestStore_ReadsFallBackToDefaults(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{FailureThreshold: 100})
	ctx := context.Background()

	repo.On("Latest", mock.Anything).Return(nil, errBackend)
	repo.On("History", mock.Anything, 10).Return(nil, errBackend)
	repo.On("Stats", mock.Anything).Return(domain.Stats{}, errBackend)
	repo.On("Snapshot", mock.Anything, domain.DefaultHistoryCap).Return(domain.Snapshot{}, errBackend)

	latest, err := s.ReadLatest(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Nil(t, latest)

	history, err := s.ReadHistory(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	stats, err := s.ReadStats(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotNil(t, stats.DeviceInfo)

	snap, err := s.ReadSnapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, domain.EmptySnapshot(), snap)
}

func TestStore_ReadHistoryClampsLimit(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{HistoryCap: 50})

	repo.On("History", mock.Anything, 50).Return([]domain.Reading{sampleReading()}, nil)

	history, err := s.ReadHistory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	none, err := s.ReadHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	repo.AssertNumberOfCalls(t, "History", 1)
}

func TestStore_TimeoutBoundsSlowBackend(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{Timeout: 20 * time.Millisecond})

	repo.On("Latest", mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	start := time.Now()
	latest, err := s.ReadLatest(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Nil(t, latest)
}

func TestStore_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	repo := new(MockRepository)
	s := New(repo, Options{FailureThreshold: 3, OpenFor: time.Minute})
	ctx := context.Background()

	repo.On("Stats", mock.Anything).Return(domain.Stats{}, errBackend)

	for i := 0; i < 3; i++ {
		_, err := s.ReadStats(ctx)
		require.ErrorIs(t, err, errBackend)
	}

	// Open: the backend is no longer called
	_, err := s.ReadStats(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, errBackend)
	repo.AssertNumberOfCalls(t, "Stats", 3)
}

func TestStore_SnapshotAgainstMemory(t *testing.T) {
	s := New(storage.NewMemoryRepository(), Options{HistoryCap: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, sampleReading()))
	}

	snap, err := s.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.History, 3)
	assert.Equal(t, int64(5), snap.Stats.TotalRequests)
	assert.Equal(t, "memory", s.Backend())
	assert.Equal(t, 3, s.HistoryCap())
	assert.NoError(t, s.Ping(ctx))
}
