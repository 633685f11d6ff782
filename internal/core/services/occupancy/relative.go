package occupancy

import (
	"fmt"
	"time"

	"github.com/realrushil/website/internal/core/domain"
)

// FormatRelative describes the age of ts relative to now. Numeric values are
// epoch seconds.
func FormatRelative(ts domain.SensorTimestamp, now time.Time) string {
	if ts.IsZero() {
		return "No data"
	}
	at, ok := ts.Time()
	if !ok {
		return "Invalid"
	}
	return "Updated " + humanizeAge(now.Sub(at))
}

// FormatReadingAge describes how long ago the server received latest.
func FormatReadingAge(latest *domain.Reading, now time.Time) string {
	if latest == nil {
		return "No data"
	}
	return FormatRelative(domain.TextTimestamp(latest.ServerTimestamp), now)
}

func humanizeAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	default:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
}
