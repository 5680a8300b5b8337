package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/controller"
	"logtail-dashboard/internal/grafana"
	"logtail-dashboard/internal/poller"
	"logtail-dashboard/internal/render"
	"logtail-dashboard/internal/repository"
	"logtail-dashboard/internal/scheduler"
	"logtail-dashboard/internal/service"
)

func main() {
	var wg sync.WaitGroup

	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewGateways,
			service.NewTailService,
			service.NewProbeService,
			service.NewMetricCatalog,
			render.NewSnapshotStore,
			NewPoller,
			controller.NewTailController,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			RegisterScheduler,
			func(lc fx.Lifecycle, p *poller.Poller) {
				startPoller(lc, &wg, p)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// --- Factory Functions ---

// NewGateways exposes the one HTTP client under both gateway interfaces.
func NewGateways(cfg *config.Config) (repository.LogGateway, repository.MetricGateway) {
	client := grafana.NewClient(cfg)
	return client, client
}

func NewPoller(
	tailSvc service.TailService,
	probeSvc service.ProbeService,
	snapshots *render.SnapshotStore,
	cfg *config.Config,
) *poller.Poller {
	renderers := []render.Renderer{snapshots}
	if cfg.Render.Console {
		renderers = append(renderers, render.NewConsoleRenderer())
	}
	return poller.New(tailSvc, probeSvc, cfg, renderers...)
}

// --- Invoker Functions ---

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tailController *controller.TailController,
) {
	if tailController != nil {
		controller.RegisterTailRoutes(router, tailController)
	} else {
		log.Warn().Msg("TailController not provided, skipping API routes.")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, catalog service.MetricCatalog) {
	scheduler.NewScheduler(lc, cfg, catalog)
}

// startPoller runs the poll loop in a goroutine managed by the fx lifecycle.
func startPoller(lc fx.Lifecycle, wg *sync.WaitGroup, p *poller.Poller) {
	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting poller goroutine")
			go p.Run(ctx, wg)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info().Msg("Signaling poller goroutine to stop...")
			cancel()
			return nil
		},
	})
}
