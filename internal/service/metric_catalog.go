package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/repository"
)

// MetricCatalog is a time-boxed cache of metric names discovered through
// the metric gateway. A refresh replaces the cached slice atomically as
// a whole; readers between refreshes only ever see a complete value.
type MetricCatalog interface {
	Names() []string
	RefreshedAt() time.Time
	Refresh(ctx context.Context) error
	WarmUp(ctx context.Context)
}

type metricCatalog struct {
	gateway repository.MetricGateway
	query   string

	mu          sync.RWMutex
	names       []string
	refreshedAt time.Time
}

func NewMetricCatalog(gateway repository.MetricGateway, cfg *config.Config) MetricCatalog {
	return &metricCatalog{
		gateway: gateway,
		query:   cfg.MetricCache.NameQuery,
	}
}

func (c *metricCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names
}

func (c *metricCatalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Refresh queries the discovery expression and swaps in the new name
// list. On failure the previous cache value stays untouched.
func (c *metricCatalog) Refresh(ctx context.Context) error {
	vector, err := c.gateway.InstantQuery(ctx, c.query)
	if err != nil {
		return fmt.Errorf("metric name discovery failed: %w", err)
	}

	seen := make(map[string]struct{}, len(vector))
	names := make([]string, 0, len(vector))
	for _, sample := range vector {
		name := sample.Metric["__name__"]
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	c.names = names
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	log.Info().Int("count", len(names)).Msg("Metric name cache refreshed")
	return nil
}

// WarmUp retries the first refresh with exponential backoff. It never
// fails the application: an empty catalog is served until a refresh
// succeeds.
func (c *metricCatalog) WarmUp(ctx context.Context) {
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if err := c.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("Attempt failed: metric name cache warm-up")
			return err
		}
		return nil
	}

	warmBackoff := backoff.NewExponentialBackOff()
	warmBackoff.InitialInterval = 2 * time.Second
	warmBackoff.MaxInterval = 15 * time.Second
	warmBackoff.MaxElapsedTime = 90 * time.Second

	if err := backoff.Retry(operation, warmBackoff); err != nil {
		log.Error().Err(err).Msg("Metric name cache warm-up gave up; serving empty catalog until next refresh")
	}
}
