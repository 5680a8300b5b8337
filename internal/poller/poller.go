package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/merge"
	"logtail-dashboard/internal/model"
	"logtail-dashboard/internal/normalize"
	"logtail-dashboard/internal/render"
	"logtail-dashboard/internal/service"
)

// Poller runs the tick loop: probe, tail with cascade, merge, normalize,
// hand off to the render adapters, sleep. Everything inside a tick is
// strictly serial; the next tick's network calls start only after the
// previous tick's render completed and the refresh interval elapsed.
//
// Cross-tick state is limited to the last displayed rows, the active
// query and the last error string; a failed tick never overwrites the
// previously rendered rows.
type Poller struct {
	tailSvc      service.TailService
	probeSvc     service.ProbeService
	renderers    []render.Renderer
	primaryQuery string
	limit        int
	interval     time.Duration

	state       model.PollerState
	rows        []model.TailRow
	activeQuery string
	lastError   string
}

func New(tailSvc service.TailService, probeSvc service.ProbeService, cfg *config.Config, renderers ...render.Renderer) *Poller {
	return &Poller{
		tailSvc:      tailSvc,
		probeSvc:     probeSvc,
		renderers:    renderers,
		primaryQuery: cfg.Tail.PrimaryQuery,
		limit:        cfg.Tail.Limit,
		interval:     cfg.Tail.RefreshInterval,
		state:        model.StatePrimary,
	}
}

// Run executes ticks until the context is cancelled. Errors never
// terminate the loop; they surface as the snapshot's status line.
func (p *Poller) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Dur("interval", p.interval).Msg("Poller started")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Poller stopping")
			return
		case <-timer.C:
		}

		p.Tick(ctx)
		timer.Reset(p.interval)
	}
}

// Tick performs one full poll cycle and returns the snapshot it handed
// to the renderers.
func (p *Poller) Tick(ctx context.Context) model.Snapshot {
	healthy, healthDetail := p.probeSvc.Probe(ctx)

	chunks, activeQuery, err := p.tailSvc.Tail(ctx)
	if err != nil {
		// Both queries failed: keep the previously displayed rows
		// untouched and surface a one-line diagnostic.
		p.lastError = err.Error()
		log.Warn().Err(err).Msg("Tail failed on this tick, keeping previous rows")
	} else {
		p.rows = p.buildRows(chunks)
		p.activeQuery = activeQuery
		p.lastError = ""
		if activeQuery == p.primaryQuery {
			p.state = model.StatePrimary
		} else {
			p.state = model.StateDegraded
		}
	}

	snap := model.Snapshot{
		Rows:         p.rows,
		ActiveQuery:  p.activeQuery,
		State:        p.state,
		Healthy:      healthy,
		HealthDetail: healthDetail,
		LastError:    p.lastError,
		RenderedAt:   time.Now(),
	}
	for _, r := range p.renderers {
		r.Render(snap)
	}
	return snap
}

func (p *Poller) buildRows(chunks []model.StreamChunk) []model.TailRow {
	merged := merge.Merge(chunks, p.limit)
	rows := make([]model.TailRow, len(merged))
	for i, line := range merged {
		rows[i] = model.TailRow{
			Timestamp: line.Timestamp,
			Labels:    line.Labels,
			Record:    normalize.Normalize(line.Line),
		}
	}
	return rows
}
