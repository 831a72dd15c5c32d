package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_sync_windows_total",
			Help: "Total number of sync windows by collection and source (rpc or cache)",
		},
		[]string{"collection", "source"},
	)

	windowNarrowings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_sync_window_narrowings_total",
			Help: "Total number of log queries narrowed because the provider returned too many results",
		},
		[]string{"collection"},
	)

	blocksScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_sync_blocks_scanned_total",
			Help: "Total number of blocks scanned for Transfer events",
		},
		[]string{"collection"},
	)

	blocksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_sync_blocks_skipped_total",
			Help: "Total number of blocks skipped by the fast forward probe",
		},
		[]string{"collection"},
	)

	lastSyncedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_sync_last_block",
			Help: "Last block replayed by the sync engine",
		},
		[]string{"collection"},
	)

	headBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "holderindexor_head_block",
			Help: "The head block used by the last sync",
		},
	)
)

func WindowFetchInc(collection, source string) {
	windowFetches.WithLabelValues(collection, source).Inc()
}

func WindowNarrowingInc(collection string) {
	windowNarrowings.WithLabelValues(collection).Inc()
}

func BlocksScannedAdd(collection string, n uint64) {
	blocksScanned.WithLabelValues(collection).Add(float64(n))
}

func BlocksSkippedAdd(collection string, n uint64) {
	blocksSkipped.WithLabelValues(collection).Add(float64(n))
}

func LastSyncedBlockSet(collection string, block uint64) {
	lastSyncedBlock.WithLabelValues(collection).Set(float64(block))
}

func HeadBlockSet(block uint64) {
	headBlock.Set(float64(block))
}
