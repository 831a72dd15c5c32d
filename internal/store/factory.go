package store

import (
	"context"
	"fmt"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
)

// New creates the store backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (store.Backend, error) {
	log = log.WithComponent(common.ComponentStore)

	switch cfg.Backend {
	case config.StoreBackendMemory, "":
		log.Info("Using in-memory store")
		return NewMemoryStore(log), nil

	case config.StoreBackendSQLite:
		log.Infof("Using sqlite store at %s", cfg.DB.Path)
		s, err := NewSQLiteStore(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.StoreBackendPebble:
		log.Infof("Using pebble store at %s", cfg.Pebble.Path)
		s, err := NewPebbleStore(cfg.Pebble.Path, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.StoreBackendRedis:
		log.Infow("Using redis store", "prefix", cfg.Redis.KeyPrefix)
		s, err := NewRedisStore(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
