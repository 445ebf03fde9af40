package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebikerent",
			Subsystem: "client",
			Name:      "api_requests_total",
			Help:      "Backend requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ebikerent",
			Subsystem: "client",
			Name:      "api_request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebikerent",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by resource and result (hit, miss, stale).",
		},
		[]string{"resource", "result"},
	)

	rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebikerent",
			Subsystem: "cache",
			Name:      "optimistic_rollbacks_total",
			Help:      "Optimistic updates reverted after a failed mutation.",
		},
		[]string{"resource"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiDuration, cacheLookups, rollbacks)
	})
}

// ObserveRequest records one backend call. code is 0 for transport failures.
func ObserveRequest(method string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	apiRequests.WithLabelValues(method, label).Inc()
	apiDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func IncCacheLookup(resource, result string) {
	cacheLookups.WithLabelValues(resource, result).Inc()
}

func IncRollback(resource string) {
	rollbacks.WithLabelValues(resource).Inc()
}
