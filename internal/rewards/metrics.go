package rewards

import (
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_aggregator_failed_lookups_total",
			Help: "Total number of tier, reward and global lookups degraded to zero",
		},
		[]string{"collection", "phase"},
	)

	tierLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderindexor_aggregator_tier_lookups_total",
			Help: "Total number of getTier lookups",
		},
		[]string{"collection"},
	)
)

func recordFailures(collection string, errLog []holders.ErrorLogEntry) {
	for _, e := range errLog {
		lookupFailures.WithLabelValues(collection, e.Phase).Inc()
	}
}
