package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) RawPayload {
	t.Helper()
	raw, err := DecodePayload([]byte(body))
	require.NoError(t, err)
	return raw
}

func TestValidatePayload_FlatAndNestedAreEquivalent(t *testing.T) {
	flat, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"Home-WiFi":3,"Guest":2}`))
	require.NoError(t, err)

	nested, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"data":{"Home-WiFi":3,"Guest":2}}`))
	require.NoError(t, err)

	want := SSIDCounts{"Home-WiFi": 3, "Guest": 2}
	assert.Equal(t, want, flat.SSIDCounts)
	assert.Equal(t, want, nested.SSIDCounts)
	assert.Equal(t, flat, nested)
	assert.Equal(t, "esp32-1", flat.DeviceID)
	assert.Equal(t, float64(1700000000), flat.SensorTimestamp.Seconds())
}

func TestValidatePayload_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no device id", `{"timestamp":1700000000,"A":1}`, FieldDeviceID},
		{"empty device id", `{"device_id":"","timestamp":1700000000,"A":1}`, FieldDeviceID},
		{"zero device id", `{"device_id":0,"timestamp":1700000000,"A":1}`, FieldDeviceID},
		{"no timestamp", `{"device_id":"esp32-1","A":1}`, FieldTimestamp},
		{"zero timestamp", `{"device_id":"esp32-1","timestamp":0,"A":1}`, FieldTimestamp},
		{"empty timestamp", `{"device_id":"esp32-1","timestamp":"","A":1}`, FieldTimestamp},
		{"null timestamp", `{"device_id":"esp32-1","timestamp":null,"A":1}`, FieldTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePayload(decode(t, tt.body))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, MissingField, verr.Kind)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, "Required fields: device_id, timestamp", verr.Message)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestValidatePayload_EmptyPayload(t *testing.T) {
	bodies := []string{
		`{"device_id":"esp32-1","timestamp":1700000000}`,
		`{"device_id":"esp32-1","timestamp":1700000000,"data":{}}`,
		`{"device_id":"esp32-1","timestamp":1700000000,"interval_ms":30000}`,
	}
	for _, body := range bodies {
		_, err := ValidatePayload(decode(t, body))
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), body)
		assert.Equal(t, EmptyPayload, verr.Kind, body)
		assert.Equal(t, "No SSID data found in payload", verr.Message)
	}
}

func TestValidatePayload_EmptyDataFallsBackToSiblings(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"data":{},"Home-WiFi":3}`))
	require.NoError(t, err)
	assert.Equal(t, SSIDCounts{"Home-WiFi": 3}, r.SSIDCounts)
}

func TestValidatePayload_MixedShapesMerge(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"data":{"A":1,"C":5},"B":2,"C":9}`))
	require.NoError(t, err)
	assert.Equal(t, SSIDCounts{"A": 1, "B": 2, "C": 5}, r.SSIDCounts)
}

func TestValidatePayload_NonObjectDataIsEnvelope(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"data":"ignored","Cafe":4}`))
	require.NoError(t, err)
	assert.Equal(t, SSIDCounts{"Cafe": 4}, r.SSIDCounts)
}

func TestValidatePayload_IntervalIsEnvelope(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":1700000000,"interval_ms":30000,"Cafe":4}`))
	require.NoError(t, err)

	assert.Equal(t, SSIDCounts{"Cafe": 4}, r.SSIDCounts)
	require.NotNil(t, r.IntervalMs)
	assert.Equal(t, int64(30000), *r.IntervalMs)
}

func TestValidatePayload_CountsPassThrough(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":"esp32-1","timestamp":"2024-05-01T12:00:00Z","data":{"A":"4","B":2.6,"C":null,"D":-1,"":1}}`))
	require.NoError(t, err)

	assert.Equal(t, SSIDCounts{"A": 4, "B": 3, "C": 0, "D": -1, "": 1}, r.SSIDCounts)
	assert.True(t, r.SensorTimestamp.IsText())
}

func TestValidatePayload_NumericDeviceID(t *testing.T) {
	r, err := ValidatePayload(decode(t, `{"device_id":42,"timestamp":1700000000,"A":1}`))
	require.NoError(t, err)
	assert.Equal(t, "42", r.DeviceID)
}

func TestDecodePayload_Malformed(t *testing.T) {
	for _, body := range []string{"", "   ", "not json", "[1,2]", "null", `"str"`} {
		_, err := DecodePayload([]byte(body))
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "body %q", body)
		assert.Equal(t, MalformedPayload, verr.Kind)
	}
}
