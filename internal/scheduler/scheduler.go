package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/service"
)

// NewScheduler refreshes the metric-name catalog on its own interval,
// independent of the poll loop. The first refresh is retried with
// backoff in a warm-up goroutine so a slow backend cannot block startup.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, catalog service.MetricCatalog) *cron.Cron {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	schedule := cfg.MetricCache.Schedule
	_, err := c.AddFunc(schedule, func() {
		if err := catalog.Refresh(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error during scheduled metric name refresh")
		}
	})

	if err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled metric name cache refresh")

	warmCtx, cancelWarm := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			go catalog.WarmUp(warmCtx)
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			cancelWarm()
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c
}
