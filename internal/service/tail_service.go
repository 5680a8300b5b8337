package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/model"
	"logtail-dashboard/internal/repository"
)

// TailService runs one windowed tail query per call, with the
// primary-then-fallback cascade. The second return value is the query
// string that actually produced the data.
type TailService interface {
	Tail(ctx context.Context) ([]model.StreamChunk, string, error)
}

type tailService struct {
	gateway  repository.LogGateway
	primary  model.QuerySpec
	fallback model.QuerySpec
	timeout  time.Duration
}

func NewTailService(gateway repository.LogGateway, cfg *config.Config) TailService {
	return &tailService{
		gateway: gateway,
		primary: model.QuerySpec{
			Query:     cfg.Tail.PrimaryQuery,
			Limit:     cfg.Tail.Limit,
			WindowSec: cfg.Tail.WindowSec,
			Direction: model.DirectionBackward,
		},
		fallback: model.QuerySpec{
			Query:     cfg.Tail.FallbackQuery,
			Limit:     cfg.Tail.Limit,
			WindowSec: cfg.Tail.WindowSec,
			Direction: model.DirectionBackward,
		},
		timeout: cfg.Tail.Timeout,
	}
}

// Tail always starts at the primary query; there is no sticky backoff.
// On primary failure the fallback is attempted exactly once.
func (s *tailService) Tail(ctx context.Context) ([]model.StreamChunk, string, error) {
	chunks, primaryErr := s.query(ctx, s.primary)
	if primaryErr == nil {
		return chunks, s.primary.Query, nil
	}
	log.Warn().
		Err(primaryErr).
		Str("query", s.primary.Query).
		Msg("Primary tail query failed, cascading to fallback")

	chunks, fallbackErr := s.query(ctx, s.fallback)
	if fallbackErr == nil {
		return chunks, s.fallback.Query, nil
	}
	return nil, "", fmt.Errorf("primary query failed (%v); fallback query failed: %w", primaryErr, fallbackErr)
}

func (s *tailService) query(ctx context.Context, spec model.QuerySpec) ([]model.StreamChunk, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.gateway.QueryRange(queryCtx, spec)
}
