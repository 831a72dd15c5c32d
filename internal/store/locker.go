package store

import (
	"context"
	"sync"
	"time"

	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"github.com/google/uuid"
)

var _ store.Locker = (*ProcessLocker)(nil)

type processLease struct {
	token     string
	expiresAt time.Time // zero never expires
}

// ProcessLocker is an in-process Locker with expiring leases.
// It only excludes holders within the same process.
type ProcessLocker struct {
	mu      sync.Mutex
	leases  map[string]processLease
	backend string
	now     func() time.Time
}

// NewProcessLocker creates an in-process locker. backend labels the lock metrics.
func NewProcessLocker(backend string) *ProcessLocker {
	return &ProcessLocker{
		leases:  make(map[string]processLease),
		backend: backend,
		now:     time.Now,
	}
}

// TryAcquire takes the lock unless an unexpired lease exists.
// A ttl of zero means the lease never expires.
func (l *ProcessLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (store.Lease, bool, error) {
	if err := ctx.Err(); err != nil {
		lockAttemptInc(l.backend, false, err)
		return store.Lease{}, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.leases[key]; ok && (held.expiresAt.IsZero() || now.Before(held.expiresAt)) {
		lockAttemptInc(l.backend, false, nil)
		return store.Lease{}, false, nil
	}

	lease := processLease{token: uuid.NewString()}
	if ttl > 0 {
		lease.expiresAt = now.Add(ttl)
	}
	l.leases[key] = lease

	lockAttemptInc(l.backend, true, nil)
	return store.Lease{Key: key, Token: lease.token}, true, nil
}

// Release drops the lease if it is still the current one for its key.
func (l *ProcessLocker) Release(_ context.Context, lease store.Lease) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.leases[lease.Key]; ok && held.token == lease.Token {
		delete(l.leases, lease.Key)
	}

	return nil
}
