// Command forecastd implements the Lindqvist Sales forecast engine.
//
// forecastd serves an HTTP API providing:
//   - POST /v1/forecast       - fit and forecast a monthly series
//   - POST /v1/scenarios      - create a scenario
//   - GET  /v1/scenarios      - list scenarios
//   - GET  /v1/scenarios/{id} - fetch a scenario
//   - DELETE /v1/scenarios/{id} - delete a scenario
//   - GET  /v1/easter/{year}  - Easter Sunday / invoice month lookup
//   - GET  /healthz           - health check
//   - GET  /metrics           - Prometheus metrics
//
// Usage:
//
//	forecastd \
//	  -listen=:8081 \
//	  -storage=redis \
//	  -redis-addr=localhost:6379 \
//	  -confidence-level=0.80
//
// Environment variables:
//
//	LISTEN                  - HTTP listen address
//	STORAGE                 - Storage backend: memory or redis
//	REDIS_ADDR              - Redis server address
//	REDIS_PASSWORD          - Redis password
//	REDIS_DB                - Redis database number
//	REDIS_TTL               - Redis baseline TTL
//	CONFIDENCE_LEVEL        - Default forecast confidence level
//	SCENARIO_SCALE_APPROX   - Scenario scale/remove approximation fraction
//	BASELINE_URL            - Ledger export URL to periodically refresh the baseline from
//	BASELINE_VALUE_PATH     - gjson path to the monthly totals array
//	BASELINE_YEAR_PATH      - gjson path to each entry's year
//	BASELINE_MONTH_PATH     - gjson path to each entry's month
//	BASELINE_REFRESH_INTERVAL - Interval between baseline refresh fetches
//	LOG_LEVEL               - Logging level: debug, info, warn, error
//	LOG_FORMAT              - Logging format: text, json
//	TLS                     - Enable mTLS (true/false)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lindqvist-sales/forecastd/cmd/forecastd/config"
	"github.com/lindqvist-sales/forecastd/cmd/forecastd/logger"
	"github.com/lindqvist-sales/forecastd/cmd/forecastd/metrics"
	"github.com/lindqvist-sales/forecastd/cmd/forecastd/router"
	"github.com/lindqvist-sales/forecastd/cmd/forecastd/store"
	"github.com/lindqvist-sales/forecastd/pkg/baseline"
	"github.com/lindqvist-sales/forecastd/pkg/httpx"
	forecastdtls "github.com/lindqvist-sales/forecastd/pkg/tls"
)

// version is set via ldflags at build time
var version = "dev"

const staleAfter = 24 * time.Hour

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg)

	log.Info("starting forecastd",
		"version", version,
		"storage", cfg.Storage,
		"listen", cfg.Listen,
	)

	st, err := store.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if closer, ok := st.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("failed to close store", "error", err)
			}
		}()
	}

	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.BaselineURL != "" {
		cli, err := httpx.NewClient(forecastdtls.Config{}, 10*time.Second)
		if err != nil {
			log.Error("failed to build baseline HTTP client", "error", err)
			os.Exit(1)
		}

		fetcher := &baseline.HTTPFetcher{
			URL:        cfg.BaselineURL,
			Method:     cfg.BaselineMethod,
			ValuePath:  cfg.BaselineValuePath,
			YearPath:   cfg.BaselineYearPath,
			MonthPath:  cfg.BaselineMonthPath,
			HTTPClient: cli,
		}

		refresher := NewRefresher(fetcher, st, m, log)
		go func() {
			if err := refresher.Run(ctx, cfg.BaselineRefreshInterval); err != nil && err != context.Canceled {
				log.Error("baseline refresh loop failed", "error", err)
			}
		}()
	} else {
		log.Info("baseline refresh disabled: no -baseline-url configured")
	}

	mux := router.SetupRoutes(st, cfg.ConfidenceLevel, cfg.ScenarioScaleApprox, staleAfter, m, log)
	httpServer := httpx.NewServer(cfg.Listen, mux, log)

	if cfg.TLS {
		tlsCfg := forecastdtls.Config{
			Enabled:  true,
			CertFile: cfg.TLSCertFile,
			KeyFile:  cfg.TLSKeyFile,
			CAFile:   cfg.TLSCAFile,
		}
		if err := tlsCfg.Validate(); err != nil {
			log.Error("invalid TLS configuration", "error", err)
			os.Exit(1)
		}

		serverTLSConfig, err := forecastdtls.NewServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile)
		if err != nil {
			log.Error("failed to build TLS config", "error", err)
			os.Exit(1)
		}
		httpServer.SetTLSConfig(serverTLSConfig)
	}

	serverErr := make(chan error, 1)
	go func() {
		if cfg.TLS {
			serverErr <- httpServer.StartTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			serverErr <- httpServer.Start()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	log.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		log.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}
