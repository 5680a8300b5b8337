package model

import (
	"sort"
	"time"
)

// LabelSet identifies a log stream's origin (namespace, pod, app, ...).
// Keys are opaque; only the display-name preference below is assumed.
type LabelSet map[string]string

var labelNamePreference = []string{"pod", "app", "container", "job", "namespace"}

// SourceName picks a human-readable stream name from the label set.
func (l LabelSet) SourceName() string {
	for _, key := range labelNamePreference {
		if v, ok := l[key]; ok && v != "" {
			return v
		}
	}
	// Deterministic fallback: value of the smallest key.
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "unknown"
	}
	sort.Strings(keys)
	return l[keys[0]]
}

// LogLine is one raw backend line with its nanosecond timestamp.
type LogLine struct {
	Timestamp int64  `json:"timestamp"`
	Line      string `json:"line"`
}

// StreamChunk is one label-partitioned slice of backend results.
// Internal ordering of Lines is not guaranteed by the backend.
type StreamChunk struct {
	Labels LabelSet  `json:"labels"`
	Lines  []LogLine `json:"lines"`
}

// MergedLine is a flattened raw line tagged with its stream's labels.
type MergedLine struct {
	Timestamp int64
	Labels    LabelSet
	Line      string
}

// DirectionBackward is the only query direction the tail uses: most
// recent entries first.
const DirectionBackward = "BACKWARD"

// QuerySpec describes one time-windowed tail query. Immutable within a tick.
type QuerySpec struct {
	Query     string
	Limit     int
	WindowSec int
	Direction string
}

// TailRow is one normalized, ordered result row.
type TailRow struct {
	Timestamp int64     `json:"timestamp"`
	Labels    LabelSet  `json:"labels"`
	Record    LogRecord `json:"record"`
}

// PollerState reports which query produced the currently displayed rows.
type PollerState string

const (
	StatePrimary  PollerState = "primary"
	StateDegraded PollerState = "degraded"
)

// Snapshot is what one tick hands to the render adapters. Built fresh
// every tick and replaced as a whole; renderers must not mutate it.
type Snapshot struct {
	Rows         []TailRow   `json:"rows"`
	ActiveQuery  string      `json:"active_query"`
	State        PollerState `json:"state"`
	Healthy      bool        `json:"healthy"`
	HealthDetail string      `json:"health_detail"`
	LastError    string      `json:"last_error"`
	RenderedAt   time.Time   `json:"rendered_at"`
}
