package storage

import (
	"context"
	"sync"
	"time"

	"github.com/lindqvist-sales/forecastd/pkg/scenario"
)

// MemoryStore implements Store in-process. It is safe for concurrent
// use. The baseline slot is subject to TTL-based expiry (it is a cache
// of externally-fetched data); scenarios are user-authored records and
// are retained until explicitly deleted.
type MemoryStore struct {
	mu        sync.RWMutex
	baseline  *Baseline
	scenarios map[string]scenario.Record

	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupDone   chan struct{}
	stopped       bool
	stopMu        sync.Mutex
}

// NewMemoryStore creates an in-memory store with no baseline expiry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scenarios: make(map[string]scenario.Record),
	}
}

// NewMemoryStoreWithTTL creates an in-memory store whose baseline slot
// is cleared by a background goroutine once it is older than ttl. The
// goroutine must be stopped by calling Stop() to avoid a leak.
func NewMemoryStoreWithTTL(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("TTL must be positive")
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	store := &MemoryStore{
		scenarios:     make(map[string]scenario.Record),
		ttl:           ttl,
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
		cleanupDone:   make(chan struct{}),
	}

	go store.runCleanup()

	return store
}

// Stop gracefully shuts down the background cleanup goroutine. Safe to
// call multiple times or on a store without TTL.
func (s *MemoryStore) Stop() {
	if s.cleanupTicker == nil {
		return
	}

	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.stopped {
		return
	}

	close(s.stopCleanup)
	<-s.cleanupDone
	s.cleanupTicker.Stop()
	s.stopped = true
}

func (s *MemoryStore) runCleanup() {
	defer close(s.cleanupDone)

	for {
		select {
		case <-s.cleanupTicker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl == 0 || s.baseline == nil {
		return
	}
	if time.Since(s.baseline.FetchedAt) > s.ttl {
		s.baseline = nil
	}
}

func (s *MemoryStore) PutBaseline(ctx context.Context, baseline Baseline) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := baseline
	s.baseline = &cp
	return nil
}

func (s *MemoryStore) GetBaseline(ctx context.Context) (Baseline, bool, error) {
	select {
	case <-ctx.Done():
		return Baseline{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.baseline == nil {
		return Baseline{}, false, nil
	}
	return *s.baseline, true, nil
}

func (s *MemoryStore) PutScenario(ctx context.Context, record scenario.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scenarios[record.ID] = record
	return nil
}

func (s *MemoryStore) GetScenario(ctx context.Context, id string) (scenario.Record, bool, error) {
	select {
	case <-ctx.Done():
		return scenario.Record{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, found := s.scenarios[id]
	return record, found, nil
}

func (s *MemoryStore) ListScenarios(ctx context.Context) ([]scenario.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scenario.Record, 0, len(s.scenarios))
	for _, record := range s.scenarios {
		out = append(out, record)
	}
	return out, nil
}

func (s *MemoryStore) DeleteScenario(ctx context.Context, id string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.scenarios[id]
	delete(s.scenarios, id)
	return existed, nil
}

// Len returns the number of scenarios currently stored, primarily useful
// for testing and metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenarios)
}
