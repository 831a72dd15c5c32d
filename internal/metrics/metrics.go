package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Population metrics
	populationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_population_runs_total",
			Help: "Total number of population runs by collection, mode and outcome",
		},
		[]string{"collection", "mode", "outcome"},
	)

	populationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderindexor_population_duration_seconds",
			Help:    "Duration of population runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"collection", "mode"},
	)

	populationStep = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_population_step",
			Help: "Current population step (1 for the active step, 0 otherwise)",
		},
		[]string{"collection", "step"},
	)

	triggerContention = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_population_in_progress_total",
			Help: "Total number of triggers rejected because a run was in flight",
		},
		[]string{"collection"},
	)

	// Snapshot metrics
	holderCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_holders",
			Help: "Number of holders in the committed snapshot",
		},
		[]string{"collection"},
	)

	liveSupply = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_live_supply",
			Help: "Number of live tokens in the committed snapshot",
		},
		[]string{"collection"},
	)

	lastProcessedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_last_processed_block",
			Help: "The last block incorporated in the committed snapshot",
		},
		[]string{"collection"},
	)

	errorLogEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_error_log_entries_total",
			Help: "Total number of recovered errors recorded in population error logs",
		},
		[]string{"collection"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "holderindexor_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "holderindexor_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "holderindexor_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func PopulationRunInc(collection, mode, outcome string) {
	populationRuns.WithLabelValues(collection, mode, outcome).Inc()
}

func PopulationDurationLog(collection, mode string, duration time.Duration) {
	populationDuration.WithLabelValues(collection, mode).Observe(duration.Seconds())
}

// PopulationStepSet marks step as the active step of collection.
func PopulationStepSet(collection, step string, steps []string) {
	for _, s := range steps {
		v := float64(0)
		if s == step {
			v = 1
		}
		populationStep.WithLabelValues(collection, s).Set(v)
	}
}

func TriggerContentionInc(collection string) {
	triggerContention.WithLabelValues(collection).Inc()
}

// SnapshotCommitted records the figures of a committed snapshot.
func SnapshotCommitted(collection string, holders int, supply, block uint64) {
	holderCount.WithLabelValues(collection).Set(float64(holders))
	liveSupply.WithLabelValues(collection).Set(float64(supply))
	lastProcessedBlock.WithLabelValues(collection).Set(float64(block))
}

func ErrorLogEntriesAdd(collection string, count int) {
	errorLogEntries.WithLabelValues(collection).Add(float64(count))
}

func ErrorsInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())

	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
