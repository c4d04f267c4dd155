package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, dbAcquireTotal) }

var dbPoolConns = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_pool_connections",
		Help: "Connections in the database pool by state.",
	},
	[]string{"state"}, // total | idle | in_use
)

var dbAcquireTotal = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_pool_acquire_count",
		Help: "Cumulative successful acquires from the database pool.",
	},
)

// SetDBPoolStats publishes a snapshot of the pool.
func SetDBPoolStats(total, idle, inUse int32, acquired int64) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(inUse))
	dbAcquireTotal.Set(float64(acquired))
}
