package domain

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReading_Enrich(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 123e6, time.UTC)
	r := Reading{DeviceID: "esp32-1", SensorTimestamp: NumericTimestamp(1700000000), SSIDCounts: SSIDCounts{"A": 1}}

	enriched := r.Enrich(now, "10.0.0.1")

	assert.Equal(t, "2024-05-01T12:00:00.123Z", enriched.ServerTimestamp)
	assert.Equal(t, now.UnixMilli(), enriched.ReceivedAtMs)
	assert.Equal(t, "10.0.0.1", enriched.SourceIP)
	assert.Empty(t, r.ServerTimestamp, "original must not change")

	enriched.SSIDCounts["A"] = 9
	assert.Equal(t, 1, r.SSIDCounts["A"])
}

func TestReading_JSONShape(t *testing.T) {
	r := Reading{
		DeviceID:        "esp32-1",
		SensorTimestamp: NumericTimestamp(1700000000),
		SSIDCounts:      SSIDCounts{"Home-WiFi": 3},
	}.Enrich(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), "10.0.0.1")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "esp32-1", m["device_id"])
	assert.EqualValues(t, 1700000000, m["timestamp"])
	assert.Equal(t, map[string]any{"Home-WiFi": float64(3)}, m["ssid_counts"])
	assert.Equal(t, "2024-05-01T12:00:00.000Z", m["server_timestamp"])
	assert.Equal(t, "10.0.0.1", m["source_ip"])
	assert.NotContains(t, m, "interval_ms")

	var back Reading
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestSensorTimestamp(t *testing.T) {
	text := TextTimestamp("2024-05-01 12:00:00")
	at, ok := text.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), at)

	data, err := json.Marshal(text)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01 12:00:00"`, string(data))

	num := NumericTimestamp(1700000000.5)
	at, ok = num.Time()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000500), at.UnixMilli())

	_, ok = TextTimestamp("soon").Time()
	assert.False(t, ok)
	assert.True(t, SensorTimestamp{}.IsZero())

	var parsed SensorTimestamp
	assert.Error(t, json.Unmarshal([]byte(`true`), &parsed))
}

func TestStats_Apply(t *testing.T) {
	s := NewStats()
	r := Reading{DeviceID: "esp32-1", SSIDCounts: SSIDCounts{"A": 1}, ServerTimestamp: "2024-05-01T12:00:00.000Z"}

	next := s.Apply(r)

	assert.Equal(t, int64(0), s.TotalRequests, "receiver untouched")
	assert.Empty(t, s.DeviceInfo)
	assert.Equal(t, int64(1), next.TotalRequests)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", next.LastUpdate)
	assert.Equal(t, DeviceInfo{LastSeen: r.ServerTimestamp, LastData: SSIDCounts{"A": 1}}, next.DeviceInfo["esp32-1"])

	r.SSIDCounts["A"] = 5
	assert.Equal(t, 1, next.DeviceInfo["esp32-1"].LastData["A"])

	data, err := json.Marshal(NewStats())
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalRequests":0,"deviceInfo":{}}`, string(data))
}

func TestPrependCappedAndHead(t *testing.T) {
	var history []Reading
	for i := 0; i < 60; i++ {
		history = PrependCapped(history, Reading{DeviceID: "d", ReceivedAtMs: int64(i)}, DefaultHistoryCap)
	}

	require.Len(t, history, 50)
	assert.Equal(t, int64(59), history[0].ReceivedAtMs)
	assert.Equal(t, int64(10), history[49].ReceivedAtMs)

	head := Head(history, 3)
	assert.Len(t, head, 3)
	head[0].DeviceID = "changed"
	assert.Equal(t, "d", history[0].DeviceID)

	assert.Empty(t, Head(history, 0))
	assert.Len(t, Head(history, 1000), 50)
	assert.Empty(t, PrependCapped(history, Reading{}, 0))
}
