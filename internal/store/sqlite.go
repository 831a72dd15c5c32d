package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/db"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/migrations"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"github.com/google/uuid"
	"github.com/russross/meddler"
)

var _ store.Backend = (*SQLiteStore)(nil)

// dbCacheEntry represents a row of the cache_entries table.
type dbCacheEntry struct {
	Key       string `meddler:"key"`
	Value     []byte `meddler:"value"`
	ExpiresAt *int64 `meddler:"expires_at"`
	UpdatedAt int64  `meddler:"updated_at"`
}

// SQLiteStore persists cache entries and leases in a sqlite database.
// Expired rows are filtered on read and removed by the maintenance coordinator.
type SQLiteStore struct {
	db          *sql.DB
	maintenance db.Maintenance
	log         *logger.Logger
	now         func() time.Time
}

// NewSQLiteStore opens the database, runs migrations and starts background maintenance.
func NewSQLiteStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*SQLiteStore, error) {
	sqlDB, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if err := migrations.RunMigrationsDB(log, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	s := &SQLiteStore{
		db:  sqlDB,
		log: log,
		now: time.Now,
	}

	s.maintenance = db.NewMaintenanceCoordinator(cfg.DB.Path, sqlDB, cfg.Maintenance, log, s.pruneExpired)
	if err := s.maintenance.Start(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to start maintenance: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	var entry dbCacheEntry
	err := meddler.QueryRow(s.db, &entry, `SELECT * FROM cache_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		observe(config.StoreBackendSQLite, "get", "miss", start)
		return nil, false, nil
	}
	if err != nil {
		observe(config.StoreBackendSQLite, "get", "error", start)
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if entry.ExpiresAt != nil && *entry.ExpiresAt <= s.now().UnixMilli() {
		observe(config.StoreBackendSQLite, "get", "miss", start)
		return nil, false, nil
	}

	observe(config.StoreBackendSQLite, "get", "hit", start)
	return entry.Value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	now := s.now()
	var expiresAt *int64
	if ttl > 0 {
		e := now.Add(ttl).UnixMilli()
		expiresAt = &e
	}

	const upsert = `
		INSERT INTO cache_entries (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, upsert, key, value, expiresAt, now.UnixMilli())
	observe(config.StoreBackendSQLite, "set", opResult(err), start)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	observe(config.StoreBackendSQLite, "delete", opResult(err), start)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// TryAcquire takes a lease row for key. An expired lease held by anyone is taken over.
func (s *SQLiteStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (store.Lease, bool, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	now := s.now()
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}

	// expires_at = 0 never expires
	const acquire = `
		INSERT INTO leases (key, owner, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			owner = excluded.owner,
			expires_at = excluded.expires_at
		WHERE leases.expires_at <> 0 AND leases.expires_at <= ?
	`
	token := uuid.NewString()
	res, err := s.db.ExecContext(ctx, acquire, key, token, expiresAt, now.UnixMilli())
	if err != nil {
		lockAttemptInc(config.StoreBackendSQLite, false, err)
		return store.Lease{}, false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		lockAttemptInc(config.StoreBackendSQLite, false, err)
		return store.Lease{}, false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}

	lockAttemptInc(config.StoreBackendSQLite, n == 1, nil)
	if n != 1 {
		return store.Lease{}, false, nil
	}
	return store.Lease{Key: key, Token: token}, true, nil
}

// Release deletes the lease row if it still carries the lease token.
func (s *SQLiteStore) Release(ctx context.Context, lease store.Lease) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	const release = `DELETE FROM leases WHERE key = ? AND owner = ?`
	if _, err := s.db.ExecContext(ctx, release, lease.Key, lease.Token); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", lease.Key, err)
	}

	return nil
}

// pruneExpired removes expired cache entries and leases.
func (s *SQLiteStore) pruneExpired(ctx context.Context, sqlDB *sql.DB) (map[string]int64, error) {
	now := s.now().UnixMilli()
	pruned := make(map[string]int64, 2) //nolint:mnd

	for _, q := range []struct {
		table string
		stmt  string
	}{
		{"cache_entries", `DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`},
		{"leases", `DELETE FROM leases WHERE expires_at <> 0 AND expires_at <= ?`},
	} {
		res, err := sqlDB.ExecContext(ctx, q.stmt, now)
		if err != nil {
			return pruned, fmt.Errorf("failed to prune %s: %w", q.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return pruned, err
		}
		pruned[q.table] = n
	}

	return pruned, nil
}

// RunMaintenance runs one maintenance pass immediately.
func (s *SQLiteStore) RunMaintenance(ctx context.Context) error {
	return s.maintenance.RunMaintenance(ctx)
}

// Close stops maintenance and closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.maintenance.Stop(); err != nil {
		s.log.Warnf("failed to stop maintenance: %v", err)
	}

	return s.db.Close()
}
