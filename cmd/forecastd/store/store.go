// Package store selects and constructs the storage.Store backend
// forecastd runs against, based on configuration.
package store

import (
	"fmt"
	"log/slog"

	"github.com/lindqvist-sales/forecastd/cmd/forecastd/config"
	"github.com/lindqvist-sales/forecastd/pkg/storage"
)

// New builds the configured storage.Store. cfg.Storage selects "memory"
// (process-local, baseline never expires) or "redis" (shared, TTL-expiring
// baseline, addressed at cfg.RedisAddr/RedisDB).
func New(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage {
	case "redis":
		logger.Info("using redis storage backend", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		redisStore, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisStore, nil
	default:
		logger.Info("using in-memory storage backend")
		return storage.NewMemoryStore(), nil
	}
}
