package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenancePasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_maintenance_passes_total",
			Help: "Store maintenance passes by outcome",
		},
		[]string{"status"},
	)

	maintenanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "holderindexor_store_maintenance_duration_seconds",
			Help:    "Duration of store maintenance passes, including the time store operations were held off",
			Buckets: prometheus.DefBuckets,
		},
	)

	maintenanceLastPass = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "holderindexor_store_maintenance_last_pass_timestamp",
			Help: "Unix timestamp of the last store maintenance pass",
		},
	)

	prunedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_pruned_rows_total",
			Help: "Expired rows removed by maintenance, by store table",
		},
		[]string{"table"},
	)

	walCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_wal_checkpoints_total",
			Help: "WAL checkpoints run by store maintenance",
		},
		[]string{"mode"},
	)

	vacuums = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holderindexor_store_vacuums_total",
			Help: "VACUUM runs on the store database",
		},
	)

	dbFileSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_store_db_size_bytes",
			Help: "Store database size in bytes, by file",
		},
		[]string{"file"},
	)

	migrationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_migrations_applied_total",
			Help: "Store schema migrations applied, by direction",
		},
		[]string{"direction"},
	)
)

func maintenancePassLog(status string, duration time.Duration) {
	maintenancePasses.WithLabelValues(status).Inc()
	maintenanceDuration.Observe(duration.Seconds())
	maintenanceLastPass.Set(float64(time.Now().UTC().Unix()))
}

// PrunedRowsAdd records rows removed from one store table.
func PrunedRowsAdd(table string, n int64) {
	if n > 0 {
		prunedRows.WithLabelValues(table).Add(float64(n))
	}
}

func walCheckpointInc(mode string) {
	walCheckpoints.WithLabelValues(mode).Inc()
}

func vacuumInc() {
	vacuums.Inc()
}

// DBSizeLog publishes the per-file sizes of the store database.
func DBSizeLog(sizes FileSizes) {
	dbFileSize.WithLabelValues("main").Set(float64(sizes.Main))
	dbFileSize.WithLabelValues("wal").Set(float64(sizes.WAL))
	dbFileSize.WithLabelValues("shm").Set(float64(sizes.SHM))
	dbFileSize.WithLabelValues("total").Set(float64(sizes.Total()))
}

// MigrationsAppliedAdd records applied schema migrations.
func MigrationsAppliedAdd(direction string, n int) {
	if n > 0 {
		migrationsApplied.WithLabelValues(direction).Add(float64(n))
	}
}
