// Package storage persists the two things the core forecasting engine
// never does itself: the current baseline series and the scenarios a
// user has built against it. It exposes two logical namespaces — a
// singleton baseline slot and a keyed scenario collection — matching the
// persistence collaborator's contract.
package storage

import (
	"context"
	"time"

	"github.com/lindqvist-sales/forecastd/pkg/scenario"
)

// Baseline is the cached monthly series the orchestrator forecasts from
// absent a scenario, plus enough metadata to validate freshness and to
// reconstruct the calendar anchor.
type Baseline struct {
	Series     []float64 `json:"series"`
	StartYear  int       `json:"start_year"`
	StartMonth int       `json:"start_month"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Store is the persistence collaborator's contract: a singleton
// baseline slot, and a keyed collection of scenarios addressed by their
// own stable identifier.
type Store interface {
	PutBaseline(ctx context.Context, baseline Baseline) error
	GetBaseline(ctx context.Context) (Baseline, bool, error)

	PutScenario(ctx context.Context, record scenario.Record) error
	GetScenario(ctx context.Context, id string) (scenario.Record, bool, error)
	ListScenarios(ctx context.Context) ([]scenario.Record, error)
	DeleteScenario(ctx context.Context, id string) (bool, error)
}
