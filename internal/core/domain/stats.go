package domain

// DeviceInfo is the last thing a sensor reported. It is overwritten on every
// reading from that device, never appended.
type DeviceInfo struct {
	LastSeen string     `json:"lastSeen"`
	LastData SSIDCounts `json:"lastData"`
}

// Stats is the running aggregate over every accepted reading.
// TotalRequests counts accepted readings, not the (capped) history length.
type Stats struct {
	TotalRequests int64                 `json:"totalRequests"`
	LastUpdate    string                `json:"lastUpdate,omitempty"`
	DeviceInfo    map[string]DeviceInfo `json:"deviceInfo"`
}

// NewStats initializes an empty aggregate with a non-nil device map.
func NewStats() Stats {
	return Stats{
		DeviceInfo: make(map[string]DeviceInfo),
	}
}

// Apply folds one reading into the aggregate and returns the result.
// The receiver is left untouched.
func (s Stats) Apply(r Reading) Stats {
	next := s.Clone()
	next.TotalRequests++
	next.LastUpdate = r.ServerTimestamp
	next.DeviceInfo[r.DeviceID] = DeviceInfo{
		LastSeen: r.ServerTimestamp,
		LastData: r.SSIDCounts.Clone(),
	}
	return next
}

// Clone deep-copies the device map.
func (s Stats) Clone() Stats {
	out := Stats{
		TotalRequests: s.TotalRequests,
		LastUpdate:    s.LastUpdate,
		DeviceInfo:    make(map[string]DeviceInfo, len(s.DeviceInfo)+1),
	}
	for id, info := range s.DeviceInfo {
		out.DeviceInfo[id] = DeviceInfo{LastSeen: info.LastSeen, LastData: info.LastData.Clone()}
	}
	return out
}

// Normalize replaces a nil device map, which can come back from a decoded
// document written by an older deployment.
func (s Stats) Normalize() Stats {
	if s.DeviceInfo == nil {
		s.DeviceInfo = make(map[string]DeviceInfo)
	}
	return s
}
