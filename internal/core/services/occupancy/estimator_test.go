package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/realrushil/website/internal/core/domain"
)

func reading(counts domain.SSIDCounts) *domain.Reading {
	return &domain.Reading{DeviceID: "esp32-1", SensorTimestamp: domain.NumericTimestamp(1700000000), SSIDCounts: counts}
}

func TestEstimate_NilIsEmpty(t *testing.T) {
	v := NewEstimator(100).Estimate(nil)

	assert.False(t, v.HasData)
	assert.Equal(t, domain.LevelEmpty, v.Level)
	assert.Equal(t, 0, v.TotalDevices)
	assert.Equal(t, 0, v.EstimatedPeople)
	assert.Equal(t, 0, v.GaugeFill)
	assert.Equal(t, "#8b5cf6", v.Color)
}

func TestEstimate_ThirtyDevices(t *testing.T) {
	v := NewEstimator(100).Estimate(reading(domain.SSIDCounts{"A": 10, "B": 20}))

	assert.True(t, v.HasData)
	assert.Equal(t, 30, v.TotalDevices)
	assert.Equal(t, 21, v.EstimatedPeople)
	assert.Equal(t, 21, v.Percentage)
	assert.Equal(t, domain.LevelLow, v.Level)
	assert.Equal(t, 25, v.GaugeFill)
	assert.Equal(t, "#10b981", v.Color)
}

func TestEstimate_ZeroCountsIsEmptyBandWithData(t *testing.T) {
	v := NewEstimator(100).Estimate(reading(domain.SSIDCounts{"A": 0}))

	assert.True(t, v.HasData)
	assert.Equal(t, domain.LevelEmpty, v.Level)
}

func TestEstimatePeople_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		devices int
		want    int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{10, 7},
		{15, 11},
		{30, 21},
		{-3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimatePeople(tt.devices), "devices=%d", tt.devices)
	}
}

func TestBandFor_Boundaries(t *testing.T) {
	tests := []struct {
		pct  int
		want domain.OccupancyLevel
	}{
		{0, domain.LevelEmpty},
		{1, domain.LevelLow},
		{25, domain.LevelLow},
		{26, domain.LevelModerate},
		{50, domain.LevelModerate},
		{51, domain.LevelHigh},
		{75, domain.LevelHigh},
		{76, domain.LevelVeryHigh},
		{100, domain.LevelVeryHigh},
		{150, domain.LevelVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.pct).Level, "pct=%d", tt.pct)
	}
}

func TestEstimate_PercentageClampedAndCapacityAware(t *testing.T) {
	full := NewEstimator(100).Estimate(reading(domain.SSIDCounts{"A": 500}))
	assert.Equal(t, 100, full.Percentage)
	assert.Equal(t, domain.LevelVeryHigh, full.Level)
	assert.Equal(t, 100, full.GaugeFill)

	small := NewEstimator(20).Estimate(reading(domain.SSIDCounts{"A": 10}))
	assert.Equal(t, 7, small.EstimatedPeople)
	assert.Equal(t, 35, small.Percentage)
	assert.Equal(t, domain.LevelModerate, small.Level)

	assert.Equal(t, DefaultMaxCapacity, NewEstimator(0).MaxCapacity())
}

func TestEstimate_Monotonic(t *testing.T) {
	e := NewEstimator(100)
	prev := -1
	for devices := 0; devices <= 200; devices++ {
		v := e.Estimate(reading(domain.SSIDCounts{"A": devices}))
		assert.GreaterOrEqual(t, v.GaugeFill, prev)
		prev = v.GaugeFill
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	assert.Equal(t, "No data", FormatRelative(domain.SensorTimestamp{}, now))
	assert.Equal(t, "No data", FormatReadingAge(nil, now))
	assert.Equal(t, "Updated 42s ago", FormatRelative(domain.NumericTimestamp(1700000000-42), now))
	assert.Equal(t, "Updated 5m ago", FormatRelative(domain.NumericTimestamp(1700000000-330), now))
	assert.Equal(t, "Updated 3h ago", FormatRelative(domain.NumericTimestamp(1700000000-3*3600-10), now))
	assert.Equal(t, "Updated 0s ago", FormatRelative(domain.NumericTimestamp(1700000100), now))
	assert.Equal(t, "Updated 1m ago", FormatRelative(domain.TextTimestamp("2023-11-14T22:12:20Z"), now))
	assert.Equal(t, "Invalid", FormatRelative(domain.TextTimestamp("yesterday"), now))

	received := &domain.Reading{ServerTimestamp: "2023-11-14T22:12:50.000Z"}
	assert.Equal(t, "Updated 30s ago", FormatReadingAge(received, now))
}
