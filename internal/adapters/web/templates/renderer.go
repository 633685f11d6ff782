package templates

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/realrushil/website/internal/core/domain"
)

// Theme names accepted by NewRenderer.
const (
	ThemeGauge   = "gauge"
	ThemeClassic = "classic"
)

// Network is one SSID row.
type Network struct {
	SSID  string
	Count int
}

// pageData is the flattened view both themes render from.
type pageData struct {
	HasData    bool
	Color      string
	FillDeg    string
	Level      domain.OccupancyLevel
	People     int
	Percentage int
	Updated    string

	GeneratedAt   string
	TotalRequests int64
	LastUpdate    string
	UptimeSeconds int64
	Platform      string

	DeviceID   string
	SensorTime string
	Received   string
	IntervalMs int64
	Networks   []Network
	RawJSON    string
}

// Renderer implements ports.DashboardRenderer for one theme.
type Renderer struct {
	theme string
	tmpl  *template.Template
}

// NewRenderer parses the template for theme.
func NewRenderer(theme string) (*Renderer, error) {
	var src string
	switch theme {
	case ThemeGauge, "":
		theme, src = ThemeGauge, GaugeHTML
	case ThemeClassic:
		src = ClassicHTML
	default:
		return nil, fmt.Errorf("unknown dashboard theme %q", theme)
	}

	tmpl, err := template.New(theme).Parse(src)
	if err != nil {
		return nil, err
	}
	return &Renderer{theme: theme, tmpl: tmpl}, nil
}

// Theme returns the selected theme name.
func (r *Renderer) Theme() string { return r.theme }

func (r *Renderer) Render(w io.Writer, view domain.DashboardView) error {
	return r.tmpl.Execute(w, newPageData(view))
}

func newPageData(view domain.DashboardView) pageData {
	occ := view.Occupancy
	data := pageData{
		HasData:       view.Latest != nil,
		Color:         occ.Color,
		FillDeg:       strconv.FormatFloat(float64(occ.GaugeFill)*2.7, 'f', -1, 64),
		Level:         occ.Level,
		People:        occ.EstimatedPeople,
		Percentage:    occ.Percentage,
		Updated:       view.Updated,
		GeneratedAt:   domain.FormatISO(view.GeneratedAt),
		TotalRequests: view.Stats.TotalRequests,
		LastUpdate:    view.Stats.LastUpdate,
		UptimeSeconds: int64(view.Uptime.Seconds()),
		Platform:      view.Platform,
	}

	latest := view.Latest
	if latest == nil {
		return data
	}
	data.DeviceID = latest.DeviceID
	data.SensorTime = latest.SensorTimestamp.String()
	if !latest.SensorTimestamp.IsText() {
		data.SensorTime += "s"
	}
	data.Received = latest.ServerTimestamp
	if latest.IntervalMs != nil {
		data.IntervalMs = *latest.IntervalMs
	}

	data.Networks = make([]Network, 0, len(latest.SSIDCounts))
	for ssid, n := range latest.SSIDCounts {
		data.Networks = append(data.Networks, Network{SSID: ssid, Count: n})
	}
	sort.Slice(data.Networks, func(i, j int) bool {
		if data.Networks[i].Count != data.Networks[j].Count {
			return data.Networks[i].Count > data.Networks[j].Count
		}
		return data.Networks[i].SSID < data.Networks[j].SSID
	})

	if raw, err := json.MarshalIndent(latest, "", "  "); err == nil {
		data.RawJSON = string(raw)
	}
	return data
}
