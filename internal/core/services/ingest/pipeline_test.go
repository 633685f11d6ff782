package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/realrushil/website/internal/adapters/storage"
	"github.com/realrushil/website/internal/core/domain"
	"github.com/realrushil/website/internal/core/services/occupancy"
	"github.com/realrushil/website/internal/core/services/probestore"
	"github.com/realrushil/website/internal/core/services/ratelimit"
)

// MockStore implements ports.ProbeStore for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Record(ctx context.Context, reading domain.Reading) error {
	return m.Called(ctx, reading).Error(0)
}

func (m *MockStore) ReadLatest(ctx context.Context) (*domain.Reading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockStore) ReadHistory(ctx context.Context, limit int) ([]domain.Reading, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Reading), args.Error(1)
}

func (m *MockStore) ReadStats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

func (m *MockStore) ReadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

type recordingNotifier struct {
	mu       sync.Mutex
	readings []domain.Reading
}

func (n *recordingNotifier) NotifyReading(_ context.Context, r domain.Reading) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readings = append(n.readings, r)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const validBody = `{"device_id":"esp32-1","timestamp":1700000000,"Home-WiFi":3,"Guest":2}`

func newMemoryPipeline(opts ...Option) (*Pipeline, *probestore.Store) {
	store := probestore.New(storage.NewMemoryRepository(), probestore.Options{})
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewPipeline(ratelimit.New(ratelimit.WithClock(clock)), store, opts...), store
}

func TestPipeline_AcceptsAndPersists(t *testing.T) {
	notifier := &recordingNotifier{}
	p, store := newMemoryPipeline(WithNotifier(notifier), WithEstimator(occupancy.NewEstimator(100)))
	ctx := context.Background()

	res := p.IngestBody(ctx, []byte(validBody), "10.0.0.1")

	require.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", res.ServerTimestamp)
	assert.NoError(t, res.StorageErr)

	latest, err := store.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, domain.SSIDCounts{"Home-WiFi": 3, "Guest": 2}, latest.SSIDCounts)
	assert.Equal(t, "10.0.0.1", latest.SourceIP)
	assert.Equal(t, fixedNow.UnixMilli(), latest.ReceivedAtMs)

	stats, err := store.ReadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRequests)

	require.Len(t, notifier.readings, 1)
	assert.Equal(t, "esp32-1", notifier.readings[0].DeviceID)
}

func TestPipeline_InvalidPayloadDoesNotTouchStore(t *testing.T) {
	store := new(MockStore)
	p := NewPipeline(ratelimit.New(), store, WithClock(clock))

	res := p.IngestBody(context.Background(), []byte(`{"timestamp":1700000000,"A":1}`), "10.0.0.1")

	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonInvalidFormat, res.Reason)
	require.NotNil(t, res.Detail)
	assert.Equal(t, domain.MissingField, res.Detail.Kind)
	store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPipeline_MalformedBody(t *testing.T) {
	store := new(MockStore)
	p := NewPipeline(ratelimit.New(), store)

	res := p.IngestBody(context.Background(), []byte(`{not json`), "10.0.0.1")

	assert.Equal(t, ReasonInvalidFormat, res.Reason)
	assert.Equal(t, domain.MalformedPayload, res.Detail.Kind)
	store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPipeline_RateLimitRunsBeforeValidation(t *testing.T) {
	store := new(MockStore)
	p := NewPipeline(ratelimit.New(ratelimit.WithClock(clock)), store, WithPolicy(Policy{MaxRequests: 2, Window: time.Minute}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := p.IngestBody(ctx, []byte(`{}`), "10.0.0.1")
		assert.Equal(t, ReasonInvalidFormat, res.Reason)
	}

	res := p.IngestBody(ctx, []byte(validBody), "10.0.0.1")
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonTooManyRequests, res.Reason)
	assert.Nil(t, res.Detail)
	store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPipeline_EleventhCallIsRejected(t *testing.T) {
	p, store := newMemoryPipeline()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.Equal(t, Accepted, p.IngestBody(ctx, []byte(validBody), "10.0.0.1").Outcome, "call %d", i+1)
	}
	assert.Equal(t, ReasonTooManyRequests, p.IngestBody(ctx, []byte(validBody), "10.0.0.1").Reason)
	assert.Equal(t, Accepted, p.IngestBody(ctx, []byte(validBody), "10.0.0.2").Outcome)

	stats, err := store.ReadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), stats.TotalRequests)
}

func TestPipeline_StorageFailureStillAccepts(t *testing.T) {
	store := new(MockStore)
	notifier := &recordingNotifier{}
	p := NewPipeline(ratelimit.New(), store, WithClock(clock), WithNotifier(notifier))
	storeErr := fmt.Errorf("%w: record: %w", domain.ErrStorageUnavailable, errors.New("dial tcp: refused"))

	store.On("Record", mock.Anything, mock.AnythingOfType("domain.Reading")).Return(storeErr)

	res := p.IngestBody(context.Background(), []byte(validBody), "10.0.0.1")

	assert.Equal(t, Accepted, res.Outcome)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", res.ServerTimestamp)
	assert.ErrorIs(t, res.StorageErr, domain.ErrStorageUnavailable)
	assert.Len(t, notifier.readings, 1)
	store.AssertExpectations(t)
}

func TestPipeline_EmptySourceUsesSentinelWindow(t *testing.T) {
	p, _ := newMemoryPipeline(WithPolicy(Policy{MaxRequests: 1, Window: time.Minute}))
	ctx := context.Background()

	require.Equal(t, Accepted, p.IngestBody(ctx, []byte(validBody), "").Outcome)
	assert.Equal(t, ReasonTooManyRequests, p.IngestBody(ctx, []byte(validBody), ratelimit.UnknownSource).Reason)
}
