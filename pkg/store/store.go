package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Artifact names used as the suffix of per-collection keys.
const (
	ArtifactHolders    = "holders"
	ArtifactState      = "state"
	ArtifactCheckpoint = "checkpoint"
	ArtifactLock       = "lock"
)

// Store is a key/value cache with optional expiry.
// Values are opaque to the store; callers persist JSON documents through GetJSON and SetJSON.
type Store interface {
	// Get returns the value stored under key.
	// found is false when the key is missing or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A ttl of zero keeps the value indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the resources held by the store.
	Close() error
}

// Lease is one successful acquisition of a lock.
// Token is unique per acquisition, so a lease that expired and was taken over
// cannot release the lock of its successor.
type Lease struct {
	Key   string
	Token string
}

// Locker provides mutual exclusion keyed by name.
type Locker interface {
	// TryAcquire takes the lock without blocking and reports whether it was taken.
	// The lock expires after ttl so a crashed holder cannot block others forever.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (lease Lease, acquired bool, err error)

	// Release gives up lease. It is a no-op when the lock is no longer held under lease.
	Release(ctx context.Context, lease Lease) error
}

// Key builds the per-collection key `{collection}_{artifact}`.
func Key(collection, artifact string) string {
	return collection + "_" + artifact
}

// EventsRangeKey builds the key under which the decoded events of one sync window are cached.
func EventsRangeKey(collection, address string, fromBlock, toBlock uint64) string {
	return fmt.Sprintf("%s_events_range_%s_%d_%d", collection, address, fromBlock, toBlock)
}

// GetJSON loads key and decodes it into out.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return s.Set(ctx, key, raw, ttl)
}

// Backend is a store that also provides locking.
type Backend interface {
	Store
	Locker
}
