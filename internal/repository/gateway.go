package repository

import (
	"context"

	"logtail-dashboard/internal/model"
)

// LogGateway is the windowed log-query boundary. Implementations do not
// retry; the fallback cascade is the caller's decision.
type LogGateway interface {
	QueryRange(ctx context.Context, spec model.QuerySpec) ([]model.StreamChunk, error)
}

// MetricGateway is the instant metric-query boundary, used by the health
// probe and the metric-name cache.
type MetricGateway interface {
	InstantQuery(ctx context.Context, query string) (model.InstantVector, error)
}
