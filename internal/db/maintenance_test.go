package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
)

// storeSchema mirrors the tables the sqlite store keeps.
var storeSchema = []Migration{
	{
		ID: "001_cache_entries.sql",
		SQL: `-- +migrate Down
DROP TABLE IF EXISTS cache_entries;

-- +migrate Up
CREATE TABLE cache_entries (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    expires_at INTEGER,
    updated_at INTEGER NOT NULL
);`,
	},
	{
		ID: "002_leases.sql",
		SQL: `-- +migrate Down
DROP TABLE IF EXISTS leases;

-- +migrate Up
CREATE TABLE leases (
    key        TEXT PRIMARY KEY,
    owner      TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);`,
	},
}

type storeFixture struct {
	db   *sql.DB
	path string
	now  time.Time
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "store.sqlite")}
	cfg.ApplyDefaults()

	sqlDB, err := NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = Migrate(logger.NewNopLogger(), sqlDB, storeSchema, migrate.Up, 0)
	require.NoError(t, err)

	return &storeFixture{db: sqlDB, path: cfg.Path, now: time.UnixMilli(1_700_000_000_000)}
}

func (f *storeFixture) cache(t *testing.T, key string, ttl time.Duration) {
	t.Helper()

	var expiresAt any
	if ttl != 0 {
		expiresAt = f.now.Add(ttl).UnixMilli()
	}
	_, err := f.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)`,
		key, []byte(`{"holders":[]}`), expiresAt, f.now.UnixMilli())
	require.NoError(t, err)
}

// lease takes key for owner the way the sqlite store does: an expired row may be overwritten.
func (f *storeFixture) lease(key, owner string, ttl time.Duration) (bool, error) {
	res, err := f.db.Exec(`
		INSERT INTO leases (key, owner, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET owner = excluded.owner, expires_at = excluded.expires_at
		WHERE leases.expires_at <= ?`,
		key, owner, f.now.Add(ttl).UnixMilli(), f.now.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (f *storeFixture) count(t *testing.T, table string) int {
	t.Helper()

	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func (f *storeFixture) pruner() Pruner {
	return func(ctx context.Context, db *sql.DB) (map[string]int64, error) {
		pruned := make(map[string]int64)
		for table, stmt := range map[string]string{
			"cache_entries": `DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`,
			"leases":        `DELETE FROM leases WHERE expires_at <= ?`,
		} {
			res, err := db.ExecContext(ctx, stmt, f.now.UnixMilli())
			if err != nil {
				return pruned, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return pruned, err
			}
			pruned[table] = n
		}
		return pruned, nil
	}
}

func (f *storeFixture) coordinator(cfg config.MaintenanceConfig, pruners ...Pruner) *MaintenanceCoordinator {
	if cfg.WALCheckpointMode == "" {
		cfg.WALCheckpointMode = "TRUNCATE"
	}
	return newMaintenanceCoordinator(f.path, f.db, cfg, logger.NewNopLogger(), pruners...)
}

func TestMaintenance_PrunesExpiredCacheEntriesAndLeases(t *testing.T) {
	f := newStoreFixture(t)

	for i := range 6 {
		f.cache(t, fmt.Sprintf("alpha_events_range_0x01_%d_%d", i*500+1, (i+1)*500), time.Minute)
	}
	f.cache(t, "alpha_holders", 0)
	f.cache(t, "alpha_window_probe", time.Hour)

	ok, err := f.lease("alpha_lock", "run-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.lease("bravo_lock", "run-2", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	f.now = f.now.Add(5 * time.Minute)

	m := f.coordinator(config.MaintenanceConfig{}, f.pruner())
	require.NoError(t, m.RunMaintenance(t.Context()))

	require.Equal(t, 2, f.count(t, "cache_entries"), "snapshots without ttl and live windows survive")
	require.Equal(t, 1, f.count(t, "leases"))

	stats := m.Stats()
	require.Equal(t, map[string]int64{"cache_entries": 6, "leases": 1}, stats.LastPruned)
	require.Equal(t, uint64(1), stats.Passes)
	require.NoError(t, stats.LastPassErr)
	require.False(t, stats.LastPassAt.IsZero())
	require.Positive(t, stats.LastSizes.Main)
}

func TestMaintenance_ExpiredLeaseIsFreedForTheNextRun(t *testing.T) {
	f := newStoreFixture(t)
	m := f.coordinator(config.MaintenanceConfig{}, f.pruner())

	ok, err := f.lease("alpha_lock", "crashed-run", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.lease("alpha_lock", "next-run", time.Minute)
	require.NoError(t, err)
	require.False(t, ok, "a live lease must not be taken over")

	f.now = f.now.Add(2 * time.Minute)
	require.NoError(t, m.RunMaintenance(t.Context()))
	require.Zero(t, f.count(t, "leases"))

	ok, err = f.lease("alpha_lock", "next-run", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	var owner string
	require.NoError(t, f.db.QueryRow(`SELECT owner FROM leases WHERE key = 'alpha_lock'`).Scan(&owner))
	require.Equal(t, "next-run", owner)
}

func TestMaintenance_WaitsForInFlightStoreOperation(t *testing.T) {
	f := newStoreFixture(t)
	m := f.coordinator(config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, f.pruner())

	unlock := m.AcquireOperationLock()

	passDone := make(chan error, 1)
	go func() { passDone <- m.RunMaintenance(context.Background()) }()

	select {
	case <-passDone:
		t.Fatal("maintenance ran while a store operation held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	f.cache(t, "alpha_holders", 0)
	unlock()

	require.NoError(t, <-passDone)
	require.Equal(t, 1, f.count(t, "cache_entries"))
}

func TestMaintenance_CheckpointsWAL(t *testing.T) {
	f := newStoreFixture(t)

	for i := range 2000 {
		f.cache(t, fmt.Sprintf("alpha_events_range_0x01_%d_%d", i*500+1, (i+1)*500), time.Hour)
	}

	before, err := DBFileSizes(f.path)
	require.NoError(t, err)
	require.Positive(t, before.WAL, "cache writes should land in the WAL first")

	m := f.coordinator(config.MaintenanceConfig{})
	require.NoError(t, m.walCheckpoint())

	after, err := DBFileSizes(f.path)
	require.NoError(t, err)
	require.Less(t, after.WAL, before.WAL)
}

func TestMaintenance_PruneFailureDoesNotSkipLaterSteps(t *testing.T) {
	f := newStoreFixture(t)
	f.cache(t, "alpha_window_probe", time.Minute)
	f.now = f.now.Add(time.Hour)

	errLeases := errors.New("leases table is locked")
	failing := func(ctx context.Context, db *sql.DB) (map[string]int64, error) {
		return map[string]int64{"leases": 0}, errLeases
	}

	m := f.coordinator(config.MaintenanceConfig{}, failing, f.pruner())

	err := m.RunMaintenance(t.Context())
	require.ErrorIs(t, err, errLeases)
	require.ErrorContains(t, err, "prune failed")

	stats := m.Stats()
	require.ErrorIs(t, stats.LastPassErr, errLeases)
	require.Equal(t, int64(1), stats.LastPruned["cache_entries"], "the healthy pruner still ran")
	require.Zero(t, f.count(t, "cache_entries"))
}

func TestMaintenance_StatsAreACopy(t *testing.T) {
	f := newStoreFixture(t)
	f.cache(t, "alpha_window_probe", time.Minute)
	f.now = f.now.Add(time.Hour)

	m := f.coordinator(config.MaintenanceConfig{}, f.pruner())
	require.NoError(t, m.RunMaintenance(t.Context()))

	stats := m.Stats()
	stats.LastPruned["cache_entries"] = 99
	require.Equal(t, int64(1), m.Stats().LastPruned["cache_entries"])
}

func TestMaintenance_Schedule(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.MaintenanceConfig
		wantPasses func(t *testing.T, m *MaintenanceCoordinator)
	}{
		{
			name: "startup pass runs before Start returns",
			cfg: config.MaintenanceConfig{
				Enabled:         true,
				CheckInterval:   common.NewDuration(time.Hour),
				VacuumOnStartup: true,
			},
			wantPasses: func(t *testing.T, m *MaintenanceCoordinator) {
				require.Equal(t, uint64(1), m.Stats().Passes)
			},
		},
		{
			name: "periodic passes",
			cfg: config.MaintenanceConfig{
				Enabled:       true,
				CheckInterval: common.NewDuration(20 * time.Millisecond),
			},
			wantPasses: func(t *testing.T, m *MaintenanceCoordinator) {
				require.Eventually(t, func() bool { return m.Stats().Passes >= 2 },
					time.Second, 10*time.Millisecond)
			},
		},
		{
			name: "disabled",
			cfg: config.MaintenanceConfig{
				Enabled:         false,
				CheckInterval:   common.NewDuration(10 * time.Millisecond),
				VacuumOnStartup: true,
			},
			wantPasses: func(t *testing.T, m *MaintenanceCoordinator) {
				time.Sleep(50 * time.Millisecond)
				require.Zero(t, m.Stats().Passes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStoreFixture(t)
			m := f.coordinator(tt.cfg, f.pruner())

			require.NoError(t, m.Start(t.Context()))
			tt.wantPasses(t, m)
			require.NoError(t, m.Stop())
			require.NoError(t, m.Stop(), "stopping twice is harmless")
		})
	}
}

func TestMaintenance_StartRejectsZeroInterval(t *testing.T) {
	f := newStoreFixture(t)
	m := f.coordinator(config.MaintenanceConfig{Enabled: true})

	require.ErrorContains(t, m.Start(t.Context()), "check interval must be positive")
	require.NoError(t, m.Stop())
}

func TestMaintenance_CancelledContext(t *testing.T) {
	f := newStoreFixture(t)
	m := f.coordinator(config.MaintenanceConfig{}, f.pruner())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.RunMaintenance(ctx), context.Canceled)
	require.Zero(t, m.Stats().Passes)
}

func TestMaintenance_LeaseChurnDuringPasses(t *testing.T) {
	f := newStoreFixture(t)
	m := f.coordinator(config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, f.pruner())

	const collections = 20
	var taken atomic.Int32
	var wg sync.WaitGroup

	for i := range collections {
		wg.Go(func() {
			key := fmt.Sprintf("collection_%d_lock", i)
			for run := range 5 {
				unlock := m.AcquireOperationLock()
				// zero ttl: the lease is already expired, so every run can take it again
				ok, err := f.lease(key, fmt.Sprintf("run-%d", run), 0)
				unlock()
				if err == nil && ok {
					taken.Add(1)
				}
			}
		})
	}

	wg.Go(func() {
		for range 3 {
			require.NoError(t, m.RunMaintenance(context.Background()))
		}
	})

	wg.Wait()

	require.Equal(t, int32(collections*5), taken.Load())
	require.Equal(t, uint64(3), m.Stats().Passes)
}

func TestNewMaintenanceCoordinator_NilConfig(t *testing.T) {
	m := NewMaintenanceCoordinator("", nil, nil, logger.NewNopLogger())
	require.IsType(t, &NoOpMaintenance{}, m)
	require.NoError(t, m.Start(t.Context()))
	m.AcquireOperationLock()()
	require.Zero(t, m.Stats().Passes)
	require.NoError(t, m.Stop())
}
