package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Grafana     GrafanaConfig
	Tail        TailConfig
	Probe       ProbeConfig
	MetricCache MetricCacheConfig
	Render      RenderConfig
}

type ServerConfig struct {
	Port string
}

type GrafanaConfig struct {
	BaseURL               string
	LogDatasourceIndex    int
	MetricDatasourceIndex int
}

type TailConfig struct {
	PrimaryQuery    string
	FallbackQuery   string
	Limit           int
	WindowSec       int
	RefreshInterval time.Duration
	Timeout         time.Duration
}

type ProbeConfig struct {
	Query   string
	Timeout time.Duration
}

type MetricCacheConfig struct {
	NameQuery string
	Schedule  string
}

type RenderConfig struct {
	Console bool
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GRAFANA_BASE_URL", "http://localhost:3000")
	viper.SetDefault("GRAFANA_DATASOURCE_INDEX", 1)
	viper.SetDefault("GRAFANA_METRIC_DATASOURCE_INDEX", 2)
	viper.SetDefault("TAIL_PRIMARY_QUERY", `{app="envoy"} |= "hello.local"`)
	viper.SetDefault("TAIL_FALLBACK_QUERY", `{app="envoy"}`)
	viper.SetDefault("TAIL_LIMIT", 40)
	viper.SetDefault("TAIL_WINDOW_SEC", 300)
	viper.SetDefault("TAIL_REFRESH_INTERVAL", "5s")
	viper.SetDefault("TAIL_TIMEOUT", "10s")
	viper.SetDefault("PROBE_QUERY", "vector(1)")
	viper.SetDefault("PROBE_TIMEOUT", "3s")
	viper.SetDefault("METRIC_NAME_QUERY", `count by (__name__) ({__name__!=""})`)
	viper.SetDefault("METRIC_CACHE_SCHEDULE", "*/60 * * * * *") // Every 60 seconds
	viper.SetDefault("RENDER_CONSOLE", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Server.Port = viper.GetString("SERVER_PORT")

	config.Grafana.BaseURL = viper.GetString("GRAFANA_BASE_URL")
	config.Grafana.LogDatasourceIndex = viper.GetInt("GRAFANA_DATASOURCE_INDEX")
	config.Grafana.MetricDatasourceIndex = viper.GetInt("GRAFANA_METRIC_DATASOURCE_INDEX")

	config.Tail.PrimaryQuery = viper.GetString("TAIL_PRIMARY_QUERY")
	config.Tail.FallbackQuery = viper.GetString("TAIL_FALLBACK_QUERY")
	config.Tail.Limit = viper.GetInt("TAIL_LIMIT")
	config.Tail.WindowSec = viper.GetInt("TAIL_WINDOW_SEC")
	config.Tail.RefreshInterval = viper.GetDuration("TAIL_REFRESH_INTERVAL")
	config.Tail.Timeout = viper.GetDuration("TAIL_TIMEOUT")

	config.Probe.Query = viper.GetString("PROBE_QUERY")
	config.Probe.Timeout = viper.GetDuration("PROBE_TIMEOUT")

	config.MetricCache.NameQuery = viper.GetString("METRIC_NAME_QUERY")
	config.MetricCache.Schedule = viper.GetString("METRIC_CACHE_SCHEDULE")

	config.Render.Console = viper.GetBool("RENDER_CONSOLE")

	// The probe must not be able to materially delay a tick.
	if config.Probe.Timeout >= config.Tail.Timeout {
		return nil, fmt.Errorf("PROBE_TIMEOUT (%s) must be shorter than TAIL_TIMEOUT (%s)",
			config.Probe.Timeout, config.Tail.Timeout)
	}
	if config.Tail.Limit <= 0 {
		return nil, fmt.Errorf("TAIL_LIMIT must be positive, got %d", config.Tail.Limit)
	}
	if config.Tail.WindowSec <= 0 {
		return nil, fmt.Errorf("TAIL_WINDOW_SEC must be positive, got %d", config.Tail.WindowSec)
	}

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
