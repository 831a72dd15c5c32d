package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_rpc_requests_total",
			Help: "Total number of RPC requests by method",
		},
		[]string{"method"},
	)

	RPCErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_rpc_errors_total",
			Help: "Total number of RPC errors by method and type",
		},
		[]string{"method", "error_type"},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderindexor_rpc_request_duration_seconds",
			Help:    "Duration of RPC requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RPCRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_rpc_retries_total",
			Help: "Total number of RPC retries by operation",
		},
		[]string{"operation"},
	)

	RPCRetrySuccesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_rpc_retry_successes_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	RPCBatchCalls = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "holderindexor_rpc_batch_calls",
			Help:    "Number of eth_call elements per JSON-RPC batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	RPCLimiterWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "holderindexor_rpc_limiter_wait_seconds",
			Help:    "Time spent waiting on the request rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

func RPCMethodInc(method string) {
	RPCRequests.WithLabelValues(method).Inc()
}

func RPCMethodDuration(method string, duration time.Duration) {
	RPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RPCMethodError(method, errorType string) {
	RPCErrors.WithLabelValues(method, errorType).Inc()
}

func RPCRetryInc(operation string) {
	RPCRetries.WithLabelValues(operation).Inc()
}

func RPCRetrySuccessInc(operation string) {
	RPCRetrySuccesses.WithLabelValues(operation).Inc()
}
