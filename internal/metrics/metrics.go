// Package metrics declares the Prometheus collectors of the service. They
// register with the default registry and are served on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambi360_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ambi360_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	UnlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambi360_unlocks_total",
			Help: "Unlock requests by result (success, forbidden, not_found, error)",
		},
		[]string{"result"},
	)

	SceneBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambi360_scene_builds_total",
			Help: "Scene graph builds by outcome (ok, cycle)",
		},
		[]string{"outcome"},
	)

	SceneCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ambi360_scene_cache_hits_total",
		Help: "Scene graphs served from cache",
	})

	SceneCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ambi360_scene_cache_misses_total",
		Help: "Scene graph cache misses",
	})

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambi360_rate_limit_hits_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	AccessLogsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ambi360_access_logs_purged_total",
		Help: "Access log rows removed by the retention job",
	})
)

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
