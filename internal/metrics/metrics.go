package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// event: register|login, outcome: ok|conflict|not_found|bad_password|invalid|error
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Registration and login attempts by outcome",
		},
		[]string{"event", "outcome"},
	)

	// op: create|update|delete
	PostOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_ops_total",
			Help: "Successful post mutations",
		},
		[]string{"op"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_cache_lookups_total",
			Help: "Post cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current hashing worker queue depth",
		},
	)

	initOnce sync.Once
)

var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, RequestLatency, AuthEvents, PostOps, CacheLookups, WorkerQueueDepth)
	})
}
