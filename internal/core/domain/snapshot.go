package domain

// DefaultHistoryCap is how many readings the history keeps.
const DefaultHistoryCap = 50

// Snapshot is a consistent view of latest, history and stats taken in one
// atomic read.
type Snapshot struct {
	Latest  *Reading  `json:"latest"`
	History []Reading `json:"history"`
	Stats   Stats     `json:"stats"`
}

// EmptySnapshot is what viewers see before any reading arrives or when the
// store cannot be reached.
func EmptySnapshot() Snapshot {
	return Snapshot{
		History: []Reading{},
		Stats:   NewStats(),
	}
}

// PrependCapped returns a new slice with r in front of history, truncated to
// at most limit entries. The input slice is not modified.
func PrependCapped(history []Reading, r Reading, limit int) []Reading {
	if limit <= 0 {
		return []Reading{}
	}
	n := len(history) + 1
	if n > limit {
		n = limit
	}
	out := make([]Reading, 0, n)
	out = append(out, r)
	for _, h := range history {
		if len(out) == n {
			break
		}
		out = append(out, h)
	}
	return out
}

// Head returns at most limit entries from the front of history as a new slice.
func Head(history []Reading, limit int) []Reading {
	if limit <= 0 {
		return []Reading{}
	}
	if len(history) < limit {
		limit = len(history)
	}
	out := make([]Reading, limit)
	copy(out, history[:limit])
	return out
}
