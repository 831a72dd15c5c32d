package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
)

// Maintenance keeps the sqlite store compact while cache and lease operations run.
type Maintenance interface {
	// Start runs the startup pass when configured and schedules periodic passes.
	Start(ctx context.Context) error
	// Stop cancels periodic passes and waits for a running one to finish.
	Stop() error
	// AcquireOperationLock is held by every store operation; it returns the unlock func.
	AcquireOperationLock() func()
	// Stats reports the outcome of the latest pass.
	Stats() MaintenanceStats
	// RunMaintenance runs one pass now.
	RunMaintenance(ctx context.Context) error
}

// Pruner deletes expired rows and reports how many it removed per table.
// Pruners run first in every pass, under the exclusive lock.
type Pruner func(ctx context.Context, db *sql.DB) (map[string]int64, error)

// MaintenanceStats describes the latest maintenance pass.
type MaintenanceStats struct {
	LastPassAt     time.Time
	Passes         uint64
	LastPruned     map[string]int64
	LastReclaimed  int64
	LastSizes      FileSizes
	LastPassErr    error
	LastPassLength time.Duration
}

// NoOpMaintenance is used when the store runs without maintenance.
type NoOpMaintenance struct{}

func (m *NoOpMaintenance) Start(ctx context.Context) error          { return nil }
func (m *NoOpMaintenance) Stop() error                              { return nil }
func (m *NoOpMaintenance) RunMaintenance(ctx context.Context) error { return nil }
func (m *NoOpMaintenance) AcquireOperationLock() func()             { return func() {} }
func (m *NoOpMaintenance) Stats() MaintenanceStats                  { return MaintenanceStats{} }

// MaintenanceCoordinator serializes maintenance passes against store operations.
// Store operations share opLock; a pass holds it exclusively.
type MaintenanceCoordinator struct {
	db      *sql.DB
	config  config.MaintenanceConfig
	dbPath  string
	pruners []Pruner
	log     *logger.Logger

	opLock sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsLock sync.Mutex
	stats     MaintenanceStats
}

// NewMaintenanceCoordinator creates the coordinator for the store at dbPath.
// A nil config disables maintenance entirely.
func NewMaintenanceCoordinator(
	dbPath string,
	db *sql.DB,
	cfg *config.MaintenanceConfig,
	log *logger.Logger,
	pruners ...Pruner,
) Maintenance {
	if cfg == nil {
		return &NoOpMaintenance{}
	}

	return newMaintenanceCoordinator(dbPath, db, *cfg, log, pruners...)
}

func newMaintenanceCoordinator(
	dbPath string,
	db *sql.DB,
	cfg config.MaintenanceConfig,
	log *logger.Logger,
	pruners ...Pruner,
) *MaintenanceCoordinator {
	return &MaintenanceCoordinator{
		db:      db,
		config:  cfg,
		dbPath:  dbPath,
		pruners: pruners,
		log:     log.WithComponent(common.ComponentMaintenance),
	}
}

func (m *MaintenanceCoordinator) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.log.Info("store maintenance is disabled")
		return nil
	}
	if m.config.CheckInterval.Duration <= 0 {
		return fmt.Errorf("store maintenance check interval must be positive, got %v", m.config.CheckInterval.Duration)
	}

	ctx, m.cancel = context.WithCancel(ctx)

	if m.config.VacuumOnStartup {
		if err := m.RunMaintenance(ctx); err != nil {
			m.log.Warnf("startup maintenance failed: %v", err)
		}
	}

	m.wg.Add(1)
	go m.loop(ctx, m.config.CheckInterval.Duration)

	m.log.Infof("store maintenance scheduled every %v (checkpoint mode %s)",
		m.config.CheckInterval.Duration, m.config.WALCheckpointMode)

	return nil
}

func (m *MaintenanceCoordinator) Stop() error {
	if m.cancel == nil {
		return nil
	}

	m.cancel()
	m.wg.Wait()
	m.cancel = nil

	return nil
}

func (m *MaintenanceCoordinator) loop(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RunMaintenance(ctx); err != nil {
				m.log.Warnf("periodic maintenance failed: %v", err)
			}
		}
	}
}

// RunMaintenance prunes expired cache entries and leases, checkpoints the WAL
// and vacuums. Store operations wait until the pass finishes. A failing step
// does not stop the later ones; all failures are joined into the result.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	start := time.Now()

	m.opLock.Lock()
	defer m.opLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	before, err := DBFileSizes(m.dbPath)
	if err != nil {
		m.log.Warnf("failed to stat store database: %v", err)
	}

	pruned, pruneErr := m.prune(ctx)
	passErr := errors.Join(pruneErr, m.walCheckpoint(), m.vacuum())

	after, err := DBFileSizes(m.dbPath)
	if err != nil {
		m.log.Warnf("failed to stat store database: %v", err)
	}

	stats := MaintenanceStats{
		LastPassAt:     time.Now().UTC(),
		LastPruned:     pruned,
		LastReclaimed:  max(before.Total()-after.Total(), 0),
		LastSizes:      after,
		LastPassErr:    passErr,
		LastPassLength: time.Since(start),
	}

	m.statsLock.Lock()
	stats.Passes = m.stats.Passes + 1
	m.stats = stats
	m.statsLock.Unlock()

	DBSizeLog(after)

	if passErr != nil {
		maintenancePassLog("error", stats.LastPassLength)
		return passErr
	}
	maintenancePassLog("success", stats.LastPassLength)

	if stats.LastReclaimed > 0 {
		m.log.Infof("maintenance reclaimed %d MB", common.BytesToMB(uint64(stats.LastReclaimed)))
	}
	m.log.Debugf("maintenance pass completed in %v", stats.LastPassLength)

	return nil
}

func (m *MaintenanceCoordinator) prune(ctx context.Context) (map[string]int64, error) {
	total := make(map[string]int64)

	var errs []error
	for _, prune := range m.pruners {
		removed, err := prune(ctx, m.db)
		for table, n := range removed {
			total[table] += n
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("prune failed: %w", err))
		}
	}

	for _, table := range slices.Sorted(maps.Keys(total)) {
		PrunedRowsAdd(table, total[table])
		if total[table] > 0 {
			m.log.Infof("pruned %d expired rows from %s", total[table], table)
		}
	}

	return total, errors.Join(errs...)
}

func (m *MaintenanceCoordinator) walCheckpoint() error {
	var mode string
	if err := m.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("failed to read journal mode: %w", err)
	}
	if !strings.EqualFold(mode, "wal") {
		return nil
	}

	var busy, logFrames, checkpointed int
	err := m.db.QueryRow(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", m.config.WALCheckpointMode)).
		Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}

	walCheckpointInc(strings.ToLower(m.config.WALCheckpointMode))
	if busy > 0 {
		m.log.Warnf("WAL checkpoint left %d of %d frames behind busy readers", logFrames-checkpointed, logFrames)
	}

	return nil
}

func (m *MaintenanceCoordinator) vacuum() error {
	if _, err := m.db.Exec("VACUUM"); err != nil {
		if strings.Contains(err.Error(), "database is locked") {
			return fmt.Errorf("VACUUM skipped, database is locked: %w", err)
		}
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	vacuumInc()
	return nil
}

func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	m.opLock.RLock()
	return m.opLock.RUnlock
}

func (m *MaintenanceCoordinator) Stats() MaintenanceStats {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()

	stats := m.stats
	stats.LastPruned = maps.Clone(m.stats.LastPruned)
	return stats
}
