package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lindqvist-sales/forecastd/pkg/scenario"
)

const (
	baselineKey       = "forecastd:baseline"
	scenarioKeyPrefix = "forecastd:scenario:"
)

// RedisStore implements Store on Redis, enabling multi-instance
// deployments to share a baseline and scenario set.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
}

// NewRedisStore creates a Redis-backed store. ttl bounds the baseline
// slot's lifetime (0 uses a 30-minute default); scenarios, being
// user-authored records rather than a cache, are stored without
// expiration.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}

	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

func (r *RedisStore) PutBaseline(ctx context.Context, baseline Baseline) error {
	data, err := json.Marshal(baseline)
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := r.client.Set(ctx, baselineKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store baseline in redis: %w", err)
	}
	return nil
}

func (r *RedisStore) GetBaseline(ctx context.Context) (Baseline, bool, error) {
	data, err := r.client.Get(ctx, baselineKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Baseline{}, false, nil
		}
		return Baseline{}, false, fmt.Errorf("failed to get baseline from redis: %w", err)
	}

	var baseline Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return Baseline{}, false, fmt.Errorf("failed to unmarshal baseline: %w", err)
	}
	return baseline, true, nil
}

func (r *RedisStore) PutScenario(ctx context.Context, record scenario.Record) error {
	if record.ID == "" {
		return errors.New("scenario id required")
	}
	if err := validateKeyComponent(record.ID); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	key := scenarioKeyPrefix + record.ID
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store scenario in redis: %w", err)
	}
	return nil
}

func (r *RedisStore) GetScenario(ctx context.Context, id string) (scenario.Record, bool, error) {
	if id == "" {
		return scenario.Record{}, false, errors.New("scenario id required")
	}

	data, err := r.client.Get(ctx, scenarioKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return scenario.Record{}, false, nil
		}
		return scenario.Record{}, false, fmt.Errorf("failed to get scenario from redis: %w", err)
	}

	var record scenario.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return scenario.Record{}, false, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	return record, true, nil
}

func (r *RedisStore) ListScenarios(ctx context.Context) ([]scenario.Record, error) {
	var records []scenario.Record
	iter := r.client.Scan(ctx, 0, scenarioKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get scenario from redis: %w", err)
		}
		var record scenario.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scenario: %w", err)
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan scenarios in redis: %w", err)
	}
	return records, nil
}

func (r *RedisStore) DeleteScenario(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("scenario id required")
	}

	n, err := r.client.Del(ctx, scenarioKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete scenario from redis: %w", err)
	}
	return n > 0, nil
}

func validateKeyComponent(s string) error {
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_') {
			return fmt.Errorf("invalid identifier %q: only alphanumeric, hyphens, and underscores allowed", s)
		}
	}
	return nil
}

// Close closes the Redis client connection. Safe to call multiple times.
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}
	return err
}

// Ping checks the Redis connection health.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
