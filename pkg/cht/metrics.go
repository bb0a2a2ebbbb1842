package cht

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric style grounded on friggdb/pool/pool.go's package-level promauto
// gauges: a small number of process-wide counters/gauges rather than a
// metric per Table instance.
var (
	metricTables = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ixheap",
		Subsystem: "cht",
		Name:      "tables_created_total",
		Help:      "Total number of chained hash tables constructed.",
	})

	metricRehashesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ixheap",
		Subsystem: "cht",
		Name:      "rehashes_total",
		Help:      "Total number of rehash operations performed across all tables.",
	})

	metricLoadFactor = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ixheap",
		Subsystem: "cht",
		Name:      "load_factor",
		Help:      "num_elts / bucket_count of the table most recently inserted into or rehashed.",
	})
)
