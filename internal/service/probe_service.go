package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/repository"
)

// ProbeService validates backend reachability with a cheap instant
// query. Its timeout is strictly shorter than the tail timeout so it
// cannot materially delay a tick, and it never returns an error: a
// failed probe only flips the displayed health flag.
type ProbeService interface {
	Probe(ctx context.Context) (bool, string)
}

type probeService struct {
	gateway repository.MetricGateway
	query   string
	timeout time.Duration
}

func NewProbeService(gateway repository.MetricGateway, cfg *config.Config) ProbeService {
	return &probeService{
		gateway: gateway,
		query:   cfg.Probe.Query,
		timeout: cfg.Probe.Timeout,
	}
}

func (s *probeService) Probe(ctx context.Context) (bool, string) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vector, err := s.gateway.InstantQuery(probeCtx, s.query)
	if err != nil {
		log.Warn().Err(err).Str("query", s.query).Msg("Health probe failed")
		return false, err.Error()
	}
	return true, fmt.Sprintf("backend reachable (%d series)", len(vector))
}
