package dto

import (
	"time"

	"logtail-dashboard/internal/model"
)

// LogRow is one display row: the normalized record plus its origin
// labels and a millisecond-precision display timestamp.
type LogRow struct {
	Time   string          `json:"time"`
	Source string          `json:"source"`
	Labels model.LabelSet  `json:"labels"`
	Record model.LogRecord `json:"record"`
}

type TailResponse struct {
	Rows        []LogRow `json:"rows"`
	Count       int      `json:"count"`
	ActiveQuery string   `json:"activeQuery"`
}

type StatusResponse struct {
	State        model.PollerState `json:"state"`
	ActiveQuery  string            `json:"activeQuery"`
	Healthy      bool              `json:"healthy"`
	HealthDetail string            `json:"healthDetail"`
	LastError    string            `json:"lastError,omitempty"`
	RenderedAt   time.Time         `json:"renderedAt"`
}

type MetricNamesResponse struct {
	Names       []string  `json:"names"`
	RefreshedAt time.Time `json:"refreshedAt"`
}
