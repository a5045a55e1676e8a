package sql

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-entrypoint/metrics"
)

const namespace = "database"

// queryDuration in nanoseconds.
var queryDuration = metrics.NewHistogramWithBuckets(
	"query_duration",
	namespace,
	"Duration of the query in nanoseconds",
	[]string{"query"},
	prometheus.ExponentialBuckets(100_000, 2, 20),
)

var connWaitLatency = metrics.NewHistogramWithBuckets(
	"conn_wait_latency",
	namespace,
	"Time spent waiting for a pooled connection in seconds",
	[]string{},
	prometheus.ExponentialBuckets(0.0001, 2, 16),
).WithLabelValues()
