package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, dbAcquireWaitTotal) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use', 'max'
	)

	dbAcquireWaitTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_empty_acquire_total",
			Help: "Cumulative count of acquires that had to wait for a free connection.",
		},
	)
)

func SetDBPoolStats(total, idle, inUse, max int32, emptyAcquires int64) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
	dbPoolStats.WithLabelValues("max").Set(float64(max))
	dbAcquireWaitTotal.Set(float64(emptyAcquires))
}
