package domain

import (
	"time"
)

// ISOLayout mirrors the millisecond UTC form browsers produce for Date.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t in UTC using ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// SSIDCounts maps a WiFi network name to the number of distinct devices seen
// probing for it during one sampling interval.
type SSIDCounts map[string]int

// Total sums every count. Missing or zero entries contribute nothing.
func (c SSIDCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy.
func (c SSIDCounts) Clone() SSIDCounts {
	if c == nil {
		return nil
	}
	out := make(SSIDCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Reading is one validated, enriched telemetry sample from the sensor.
// A Reading is treated as immutable once the ingest pipeline has stamped it.
type Reading struct {
	DeviceID        string          `json:"device_id"`
	SensorTimestamp SensorTimestamp `json:"timestamp"`
	SSIDCounts      SSIDCounts      `json:"ssid_counts"`
	IntervalMs      *int64          `json:"interval_ms,omitempty"`

	// Set by the pipeline at receipt
	ServerTimestamp string `json:"server_timestamp"`
	ReceivedAtMs    int64  `json:"received_at_ms"`
	SourceIP        string `json:"source_ip"`
}

// Clone deep-copies the reading so stores never share maps with callers.
func (r Reading) Clone() Reading {
	out := r
	out.SSIDCounts = r.SSIDCounts.Clone()
	if r.IntervalMs != nil {
		v := *r.IntervalMs
		out.IntervalMs = &v
	}
	return out
}

// TotalDevices is the sum of all per-SSID counts.
func (r Reading) TotalDevices() int {
	return r.SSIDCounts.Total()
}

// Enrich stamps the receipt metadata on a copy of the reading.
func (r Reading) Enrich(now time.Time, source string) Reading {
	out := r.Clone()
	out.ServerTimestamp = FormatISO(now)
	out.ReceivedAtMs = now.UnixMilli()
	out.SourceIP = source
	return out
}
