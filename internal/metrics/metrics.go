// Package metrics exposes the Prometheus instruments of the explorer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// viewBuilds counts element view builds by result
	viewBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financeviz_element_view_builds_total",
		Help: "Total element view builds by result",
	}, []string{"result"})

	// viewDuration tracks element view build latency
	viewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "financeviz_element_view_duration_seconds",
		Help:    "Element view build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	// treeCacheLookups counts classification tree cache lookups
	treeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financeviz_tree_cache_lookups_total",
		Help: "Classification tree cache lookups by outcome",
	}, []string{"outcome"})

	// treeCacheInvalidations counts trees dropped after document updates
	treeCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financeviz_tree_cache_invalidations_total",
		Help: "Classification trees dropped from the cache",
	})

	// documentUpdates counts document update messages by kind and year
	documentUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financeviz_document_updates_total",
		Help: "Document update notifications received",
	}, []string{"kind", "year"})

	// httpRequests counts served requests by status code
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financeviz_http_requests_total",
		Help: "HTTP requests by status code",
	}, []string{"code"})

	// rateLimited counts requests rejected by the per-client limiter
	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financeviz_http_rate_limited_total",
		Help: "HTTP requests rejected by rate limiting",
	})
)

// ObserveView records one element view build.
func ObserveView(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	viewBuilds.WithLabelValues(result).Inc()
	viewDuration.Observe(time.Since(start).Seconds())
}

// TreeCacheLookup records a tree cache hit or miss.
func TreeCacheLookup(hit bool) {
	if hit {
		treeCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	treeCacheLookups.WithLabelValues("miss").Inc()
}

// TreesInvalidated records trees dropped from the cache.
func TreesInvalidated(n int) {
	if n > 0 {
		treeCacheInvalidations.Add(float64(n))
	}
}

// DocumentUpdated records one document update notification. Year 0 means
// every year.
func DocumentUpdated(kind string, year int) {
	label := "all"
	if year > 0 {
		label = strconv.Itoa(year)
	}
	documentUpdates.WithLabelValues(kind, label).Inc()
}

// HTTPRequest records one served request.
func HTTPRequest(statusCode int) {
	httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RateLimited records one rejected request.
func RateLimited() {
	rateLimited.Inc()
}
