package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_operations_total",
			Help: "Total number of store operations by backend, operation and result",
		},
		[]string{"backend", "op", "result"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderindexor_store_operation_duration_seconds",
			Help:    "Duration of store operations",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"backend", "op"},
	)

	lockAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_store_lock_attempts_total",
			Help: "Total number of lock acquisition attempts by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)
)

// observe records one store operation. result is "hit", "miss", "ok" or "error".
func observe(backend, op, result string, start time.Time) {
	storeOperations.WithLabelValues(backend, op, result).Inc()
	storeOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

func getResult(found bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case found:
		return "hit"
	default:
		return "miss"
	}
}

func opResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func lockAttemptInc(backend string, acquired bool, err error) {
	outcome := "busy"
	switch {
	case err != nil:
		outcome = "error"
	case acquired:
		outcome = "acquired"
	}
	lockAttempts.WithLabelValues(backend, outcome).Inc()
}
