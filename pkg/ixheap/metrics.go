package ixheap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric style grounded on friggdb/pool/pool.go's package-level promauto
// gauges/counters.
var (
	metricSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ixheap",
		Name:      "size",
		Help:      "Number of elements currently resident in the most recently mutated heap.",
	})

	metricPushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ixheap",
		Name:      "pushes_total",
		Help:      "Total number of successful Push calls across all heaps.",
	})

	metricPopsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ixheap",
		Name:      "pops_total",
		Help:      "Total number of successful Pop calls across all heaps.",
	})
)
