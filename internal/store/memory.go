package store

import (
	"context"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"github.com/jellydator/ttlcache/v3"
)

var _ store.Backend = (*MemoryStore)(nil)

// MemoryStore keeps values in an in-process ttlcache. Contents are lost on restart.
type MemoryStore struct {
	*ProcessLocker

	cache *ttlcache.Cache[string, []byte]
	log   *logger.Logger
}

// NewMemoryStore creates a memory store and starts its expiry loop.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()

	return &MemoryStore{
		ProcessLocker: NewProcessLocker(config.StoreBackendMemory),
		cache:         cache,
		log:           log,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe(config.StoreBackendMemory, "get", "error", start)
		return nil, false, err
	}

	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		observe(config.StoreBackendMemory, "get", "miss", start)
		return nil, false, nil
	}

	observe(config.StoreBackendMemory, "get", "hit", start)
	return item.Value(), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe(config.StoreBackendMemory, "set", "error", start)
		return err
	}

	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}

	// the caller may reuse its buffer
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, ttl)

	observe(config.StoreBackendMemory, "set", "ok", start)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	s.cache.Delete(key)
	observe(config.StoreBackendMemory, "delete", "ok", start)
	return nil
}

// Close stops the expiry loop and drops all entries.
func (s *MemoryStore) Close() error {
	s.cache.Stop()
	s.cache.DeleteAll()
	s.log.Debug("memory store closed")
	return nil
}
