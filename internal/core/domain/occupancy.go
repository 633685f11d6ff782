package domain

import "time"

// OccupancyLevel is the display band derived from an occupancy estimate.
type OccupancyLevel string

const (
	LevelEmpty    OccupancyLevel = "empty"
	LevelLow      OccupancyLevel = "low"
	LevelModerate OccupancyLevel = "moderate"
	LevelHigh     OccupancyLevel = "high"
	LevelVeryHigh OccupancyLevel = "very-high"
)

// OccupancyView is what the dashboard shows for the latest reading.
// GaugeFill snaps to the band's upper bound rather than the raw percentage.
type OccupancyView struct {
	HasData         bool           `json:"has_data"`
	TotalDevices    int            `json:"total_devices"`
	EstimatedPeople int            `json:"estimated_people"`
	Percentage      int            `json:"occupancy_percentage"`
	Level           OccupancyLevel `json:"level"`
	Color           string         `json:"color"`
	GaugeFill       int            `json:"gauge_fill"`
}

// DashboardView carries everything a dashboard renderer needs.
type DashboardView struct {
	Latest      *Reading
	Stats       Stats
	History     []Reading
	Occupancy   OccupancyView
	Updated     string
	GeneratedAt time.Time
	Uptime      time.Duration
	Platform    string
}
