// This file contains the Refresher type which keeps the stored baseline
// current by periodically re-fetching it from an external ledger export:
//
//	fetch → store
//
// The Refresher runs continuously via Run(), executing Tick() at regular
// intervals. Each tick replaces the stored baseline with whatever the
// fetcher currently returns; the HTTP handlers in router read the result
// on every POST /v1/forecast that omits an inline series.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lindqvist-sales/forecastd/cmd/forecastd/metrics"
	"github.com/lindqvist-sales/forecastd/pkg/baseline"
	"github.com/lindqvist-sales/forecastd/pkg/storage"
)

// Refresher periodically re-fetches the baseline series and stores it.
type Refresher struct {
	fetcher baseline.Fetcher
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRefresher creates a new Refresher.
func NewRefresher(fetcher baseline.Fetcher, store storage.Store, m *metrics.Metrics, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		fetcher: fetcher,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Run executes the refresh loop at regular intervals. Blocks until ctx is
// canceled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info("starting baseline refresh loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := r.Tick(ctx); err != nil {
		r.logger.Error("initial baseline refresh failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("baseline refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Error("baseline refresh failed", "error", err)
			}
		}
	}
}

// Tick performs one refresh cycle: fetch the baseline, then store it.
// Exported for testing purposes.
func (r *Refresher) Tick(ctx context.Context) error {
	start := time.Now()

	b, err := r.fetcher.Fetch(ctx)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("baseline", "fetch_failed")
		}
		return fmt.Errorf("fetch baseline: %w", err)
	}

	if err := r.store.PutBaseline(ctx, b); err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("baseline", "store_failed")
		}
		return fmt.Errorf("store baseline: %w", err)
	}

	duration := time.Since(start)
	if r.metrics != nil {
		r.metrics.SetBaselineAge(time.Since(b.FetchedAt).Seconds())
	}

	r.logger.Info("refreshed baseline",
		"months", len(b.Series),
		"start_year", b.StartYear,
		"start_month", b.StartMonth,
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}
