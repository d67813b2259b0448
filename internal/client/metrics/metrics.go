// Package metrics instruments the upload, action and search pipelines of the
// client with Prometheus collectors.
//
// All methods are safe on a nil *Metrics, so components can be built without
// instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storeit_client"

// Upload outcomes.
const (
	UploadSucceeded = "succeeded"
	UploadFailed    = "failed"
	UploadOversize  = "rejected_oversize"
	UploadRemoved   = "removed"
)

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	actions         *prometheus.CounterVec
	searches        prometheus.Counter
	searchStale     prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend calls by method, path and status (0 = transport failure).",
		}, []string{"method", "path", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_tasks_total",
			Help:      "Settled upload tasks by outcome.",
		}, []string{"outcome"}),
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_actions_total",
			Help:      "Submitted file actions by kind and result.",
		}, []string{"action", "result"}),
		searches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries issued after debounce.",
		}),
		searchStale: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stale_responses_total",
			Help:      "Search responses dropped because a newer query superseded them.",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_hits_total",
			Help:      "Search cache hits.",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_misses_total",
			Help:      "Search cache misses.",
		}),
	}
}

// ObserveRequest implements gateway.Observer.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) UploadSettled(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// ActionSubmitted records one Submit; ok is false when the call failed.
func (m *Metrics) ActionSubmitted(action string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.actions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) SearchIssued() {
	if m == nil {
		return
	}
	m.searches.Inc()
}

func (m *Metrics) SearchStale() {
	if m == nil {
		return
	}
	m.searchStale.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
