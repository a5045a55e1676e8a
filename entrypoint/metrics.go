package entrypoint

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-entrypoint/metrics"
)

const namespace = "engine"

var (
	outcomes = metrics.NewCounter(
		"outcomes",
		namespace,
		"Operations processed by status",
		[]string{"status"},
	)
	collected = metrics.NewCounter(
		"collected",
		namespace,
		"Fees paid to beneficiaries",
		[]string{},
	).WithLabelValues()
	batchDuration = metrics.NewHistogramWithBuckets(
		"batch_duration",
		namespace,
		"Duration of a batch in seconds",
		[]string{},
		prometheus.ExponentialBuckets(0.001, 2, 16),
	).WithLabelValues()
	batchSize = metrics.NewHistogramWithBuckets(
		"batch_size",
		namespace,
		"Number of operations in a batch",
		[]string{},
		prometheus.ExponentialBuckets(1, 2, 10),
	).WithLabelValues()
	instanceLookups = metrics.NewCounter(
		"instance_cache",
		namespace,
		"Lookups of decoded template instances",
		[]string{"result"},
	)
	cacheHit  = instanceLookups.WithLabelValues("hit")
	cacheMiss = instanceLookups.WithLabelValues("miss")
)
