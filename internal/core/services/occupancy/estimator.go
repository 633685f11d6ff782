// Package occupancy turns per-SSID probe counts into a banded occupancy
// estimate for display.
package occupancy

import (
	"math"

	"github.com/realrushil/website/internal/core/domain"
)

// CorrectionFactor scales device counts down to people; one person often
// carries more than one probing device.
const CorrectionFactor = 0.7

// DefaultMaxCapacity is the head count that maps to 100%.
const DefaultMaxCapacity = 100

// Band is one step of the occupancy scale. Bands apply to the capacity
// percentage; UpperBound is inclusive and doubles as the gauge fill.
type Band struct {
	Level      domain.OccupancyLevel
	UpperBound int
	Color      string
}

// Bands in ascending order.
var Bands = []Band{
	{Level: domain.LevelEmpty, UpperBound: 0, Color: "#8b5cf6"},
	{Level: domain.LevelLow, UpperBound: 25, Color: "#10b981"},
	{Level: domain.LevelModerate, UpperBound: 50, Color: "#f59e0b"},
	{Level: domain.LevelHigh, UpperBound: 75, Color: "#ef4444"},
	{Level: domain.LevelVeryHigh, UpperBound: 100, Color: "#dc2626"},
}

// Estimator is a pure mapping from the latest reading to an OccupancyView.
type Estimator struct {
	maxCapacity int
}

// NewEstimator uses DefaultMaxCapacity when maxCapacity is not positive.
func NewEstimator(maxCapacity int) *Estimator {
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxCapacity
	}
	return &Estimator{maxCapacity: maxCapacity}
}

// MaxCapacity returns the configured capacity.
func (e *Estimator) MaxCapacity() int { return e.maxCapacity }

// Estimate never fails; a nil reading is the empty band.
func (e *Estimator) Estimate(latest *domain.Reading) domain.OccupancyView {
	if latest == nil {
		return view(BandFor(0), false, 0, 0, 0)
	}

	total := latest.TotalDevices()
	people := EstimatePeople(total)
	pct := e.Percentage(people)
	return view(BandFor(pct), true, total, people, pct)
}

// EstimatePeople applies the correction factor, rounding half up.
func EstimatePeople(totalDevices int) int {
	if totalDevices <= 0 {
		return 0
	}
	return roundHalfUp(float64(totalDevices) * CorrectionFactor)
}

// Percentage of capacity, clamped to [0, 100].
func (e *Estimator) Percentage(people int) int {
	if people <= 0 {
		return 0
	}
	pct := roundHalfUp(float64(people) / float64(e.maxCapacity) * 100)
	if pct > 100 {
		return 100
	}
	return pct
}

// BandFor returns the band containing pct.
func BandFor(pct int) Band {
	for _, b := range Bands {
		if pct <= b.UpperBound {
			return b
		}
	}
	return Bands[len(Bands)-1]
}

func view(b Band, hasData bool, total, people, pct int) domain.OccupancyView {
	return domain.OccupancyView{
		HasData:         hasData,
		TotalDevices:    total,
		EstimatedPeople: people,
		Percentage:      pct,
		Level:           b.Level,
		Color:           b.Color,
		GaugeFill:       b.UpperBound,
	}
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
