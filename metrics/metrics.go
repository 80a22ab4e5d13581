// Package metrics holds the prometheus collectors of clients and workers. All
// collectors register with the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redisbus"

const (
	OutcomeOk    = "ok"
	OutcomeFault = "fault"
	OutcomePanic = "panic"
	// the call was answered from the cache without executing
	OutcomeCached = "cached"
)

var (
	// CallsSubmitted counts calls pushed to a method queue.
	CallsSubmitted = MustRegisterCounterVec(namespace, "client", "calls_submitted_total",
		"Number of calls enqueued for execution.", "method")
	// ClientCacheHits counts submissions answered from the cache.
	ClientCacheHits = MustRegisterCounterVec(namespace, "client", "cache_hits_total",
		"Number of submissions resolved from the cache without enqueueing.", "method")

	CallsExecuted = MustRegisterCounterVec(namespace, "worker", "calls_total",
		"Number of calls taken from a queue, by outcome.", "method", "outcome")
	ExecutionSeconds = MustRegisterHistogramVec(namespace, "worker", "execution_seconds",
		"Time spent executing targets.", prometheus.DefBuckets, "method")
	QueueLatencySeconds = MustRegisterHistogramVec(namespace, "worker", "queue_latency_seconds",
		"Time calls spent waiting in their queue.", prometheus.ExponentialBuckets(0.001, 4, 10), "method")
	BusyLoops = MustRegisterGauge(namespace, "worker", "busy_loops",
		"Number of serve loops currently executing a call.")
)

// MustRegisterCounterVec creates and registers a counter vector.
// Must be called from `init`.
func MustRegisterCounterVec(namespace, component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// MustRegisterGauge creates and registers a gauge.
// Must be called from `init`.
func MustRegisterGauge(namespace, component, name, help string) prometheus.Gauge {
	m := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(m)
	return m
}

// MustRegisterHistogramVec creates and registers a histogram vector.
// Must be called from `init`.
func MustRegisterHistogramVec(namespace, component, name, help string, buckets []float64, labelNames ...string) *prometheus.HistogramVec {
	m := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// SetDurationObserver sets an observed value for the duration since the given start time
// in seconds.
func SetDurationObserver(o prometheus.Observer, startTime time.Time) {
	o.Observe(time.Since(startTime).Seconds())
}
