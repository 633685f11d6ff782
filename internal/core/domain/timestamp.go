package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// SensorTimestamp is the sensor-local clock value. Sensors send either epoch
// seconds or an ISO-8601 string; the original form is preserved on the wire.
type SensorTimestamp struct {
	seconds float64
	text    string
	isText  bool
}

// NumericTimestamp builds a timestamp from epoch seconds.
func NumericTimestamp(seconds float64) SensorTimestamp {
	return SensorTimestamp{seconds: seconds}
}

// TextTimestamp builds a timestamp from a string value.
func TextTimestamp(s string) SensorTimestamp {
	return SensorTimestamp{text: s, isText: true}
}

// IsZero reports whether the value is absent or empty (0 or "").
func (t SensorTimestamp) IsZero() bool {
	if t.isText {
		return t.text == ""
	}
	return t.seconds == 0
}

// IsText reports whether the sensor sent a string.
func (t SensorTimestamp) IsText() bool {
	return t.isText
}

// Seconds returns the numeric value. Zero for string timestamps.
func (t SensorTimestamp) Seconds() float64 {
	return t.seconds
}

var textLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time interprets the value as an instant. Numeric values are epoch seconds.
func (t SensorTimestamp) Time() (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	if !t.isText {
		if math.IsNaN(t.seconds) || math.IsInf(t.seconds, 0) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(t.seconds)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	for _, layout := range textLayouts {
		if parsed, err := time.Parse(layout, t.text); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func (t SensorTimestamp) String() string {
	if t.isText {
		return t.text
	}
	return strconv.FormatFloat(t.seconds, 'f', -1, 64)
}

// MarshalJSON writes the value back in the form the sensor used.
func (t SensorTimestamp) MarshalJSON() ([]byte, error) {
	if t.isText {
		return json.Marshal(t.text)
	}
	return []byte(strconv.FormatFloat(t.seconds, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number or string.
func (t *SensorTimestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = SensorTimestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextTimestamp(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp must be a number or string: %w", err)
	}
	*t = NumericTimestamp(f)
	return nil
}
