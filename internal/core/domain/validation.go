package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Envelope fields. Everything else on a flat payload is an SSID count.
const (
	FieldDeviceID   = "device_id"
	FieldTimestamp  = "timestamp"
	FieldData       = "data"
	FieldIntervalMs = "interval_ms"
)

// RawPayload is an untrusted, decoded JSON object as received from a sensor.
type RawPayload map[string]any

// DecodePayload parses a request body into a RawPayload. Numbers are kept as
// json.Number so counts and timestamps survive without float rounding.
func DecodePayload(body []byte) (RawPayload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, malformed("Request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw RawPayload
	if err := dec.Decode(&raw); err != nil {
		return nil, malformed("Request body must be a JSON object")
	}
	if raw == nil {
		return nil, malformed("Request body must be a JSON object")
	}
	return raw, nil
}

// ssidEntries collects the SSID counts of a payload. Both accepted layouts
// are read and merged, so a payload may mix them:
//
//	{"device_id": .., "timestamp": .., "<ssid>": n, ...}
//	{"device_id": .., "timestamp": .., "data": {"<ssid>": n, ...}}
//
// Entries under "data" win when the same SSID appears in both places.
func ssidEntries(raw RawPayload) map[string]any {
	entries := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case FieldDeviceID, FieldTimestamp, FieldData, FieldIntervalMs:
			continue
		}
		entries[k] = v
	}
	if nested, ok := raw[FieldData].(map[string]any); ok {
		for k, v := range nested {
			entries[k] = v
		}
	}
	return entries
}

// ValidatePayload checks the structure of a raw payload and normalizes it into
// a canonical Reading. It has no side effects.
//
// Counts are not range checked: values are carried as received, with
// non-numeric values reading as zero.
func ValidatePayload(raw RawPayload) (Reading, error) {
	deviceID, ok := stringField(raw[FieldDeviceID])
	if !ok {
		return Reading{}, missingField(FieldDeviceID)
	}
	ts, ok := timestampField(raw[FieldTimestamp])
	if !ok {
		return Reading{}, missingField(FieldTimestamp)
	}

	entries := ssidEntries(raw)
	if len(entries) == 0 {
		return Reading{}, emptyPayload()
	}

	counts := make(SSIDCounts, len(entries))
	for ssid, v := range entries {
		counts[ssid] = toCount(v)
	}

	reading := Reading{
		DeviceID:        deviceID,
		SensorTimestamp: ts,
		SSIDCounts:      counts,
	}
	if interval, ok := intField(raw[FieldIntervalMs]); ok {
		reading.IntervalMs = &interval
	}
	return reading, nil
}

func stringField(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		if f, err := val.Float64(); err != nil || f == 0 {
			return "", false
		}
		return val.String(), true
	case float64:
		if val == 0 {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}

func timestampField(v any) (SensorTimestamp, bool) {
	var ts SensorTimestamp
	switch val := v.(type) {
	case string:
		ts = TextTimestamp(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return SensorTimestamp{}, false
		}
		ts = NumericTimestamp(f)
	case float64:
		ts = NumericTimestamp(val)
	default:
		return SensorTimestamp{}, false
	}
	return ts, !ts.IsZero()
}

func intField(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, true
		}
		if f, err := val.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(val), true
	}
	return 0, false
}

func toCount(v any) int {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return roundHalfUp(f)
		}
	case float64:
		return roundHalfUp(val)
	case int:
		return val
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return roundHalfUp(f)
		}
	}
	return 0
}

func roundHalfUp(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Floor(f + 0.5))
}
