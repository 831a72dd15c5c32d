package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
)

var _ store.Backend = (*PebbleStore)(nil)

// pebbleEntry is the on-disk envelope of a pebble value.
type pebbleEntry struct {
	// ExpiresAt is a unix millisecond timestamp, zero for no expiry
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Value     []byte `json:"value"`
}

// PebbleStore keeps values in a local pebble database.
// Expired values are deleted lazily when read.
type PebbleStore struct {
	*ProcessLocker

	db  *pebble.DB
	log *logger.Logger
	now func() time.Time
}

// NewPebbleStore opens (or creates) the pebble database at path.
func NewPebbleStore(path string, log *logger.Logger) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}

	return &PebbleStore{
		ProcessLocker: NewProcessLocker(config.StoreBackendPebble),
		db:            db,
		log:           log,
		now:           time.Now,
	}, nil
}

func (s *PebbleStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := s.get(key)
	observe(config.StoreBackendPebble, "get", getResult(found, err), start)
	return value, found, err
}

func (s *PebbleStore) get(key string) ([]byte, bool, error) {
	raw, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting %s: %w", key, err)
	}

	var entry pebbleEntry
	err = json.Unmarshal(raw, &entry)
	closer.Close()
	if err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", key, err)
	}

	if entry.ExpiresAt != 0 && entry.ExpiresAt <= s.now().UnixMilli() {
		if err := s.db.Delete([]byte(key), pebble.NoSync); err != nil {
			s.log.Warnf("failed to delete expired key %s: %v", key, err)
		}
		return nil, false, nil
	}

	return entry.Value, true, nil
}

func (s *PebbleStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()

	entry := pebbleEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl).UnixMilli()
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		observe(config.StoreBackendPebble, "set", "error", start)
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	err = s.db.Set([]byte(key), raw, pebble.Sync)
	observe(config.StoreBackendPebble, "set", opResult(err), start)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	return nil
}

func (s *PebbleStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.db.Delete([]byte(key), pebble.Sync)
	observe(config.StoreBackendPebble, "delete", opResult(err), start)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing pebble db: %w", err)
	}

	return nil
}
