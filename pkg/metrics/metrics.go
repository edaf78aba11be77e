package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PagesCrawledTotal  *prometheus.CounterVec
	RobotsBlockedTotal prometheus.Counter
	FetchErrorsTotal   *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	FrontierSize       prometheus.Gauge
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once; registration happens on the first call only.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served by the control API.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of control API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PagesCrawledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_crawled_total",
			Help: "Total number of pages fetched successfully.",
		},
		[]string{"depth"},
	)

	RobotsBlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_robots_blocked_total",
			Help: "Total number of URLs skipped because robots rules deny them.",
		},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_fetch_errors_total",
			Help: "Total number of frontier entries abandoned after fetch failure.",
		},
		[]string{"reason"}, // status, network, canceled
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "Duration of page fetches including retries.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"host"},
	)

	FrontierSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawler_frontier_size",
			Help: "Current number of entries in the crawl frontier.",
		},
	)
}
