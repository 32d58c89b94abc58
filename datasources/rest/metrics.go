package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts remote requests by resource and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "octorest_requests_total",
			Help: "Total number of requests sent to remote APIs",
		},
		[]string{"resource", "status"},
	)
	// RequestDuration is the latency of remote requests, including rate limiter waits.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "octorest_request_duration_seconds",
			Help:    "Remote request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)
	// CacheHitsTotal counts responses served from the conditional request cache.
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "octorest_cache_hits_total",
			Help: "Total number of not modified responses served from the cache",
		},
		[]string{"resource"},
	)
)
