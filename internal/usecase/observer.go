package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/user/webcrawler/pkg/metrics"
)

// Observer receives crawl lifecycle events. Console output and metrics are
// side channels of the engine, not result values.
type Observer interface {
	// Crawled reports a successfully fetched page.
	Crawled(url string, depth int)
	// Blocked reports a URL denied by robots rules.
	Blocked(url string)
	// FetchError reports a frontier entry abandoned after fetch failure.
	FetchError(url string, reason string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Crawled(string, int)       {}
func (NopObserver) Blocked(string)            {}
func (NopObserver) FetchError(string, string) {}

// LogObserver writes events to the global slog logger.
type LogObserver struct{}

func (LogObserver) Crawled(url string, depth int) {
	slog.Info("crawled", "url", url, "depth", depth)
}

func (LogObserver) Blocked(url string) {
	slog.Info("blocked by robots.txt", "url", url)
}

func (LogObserver) FetchError(url string, reason string) {
	slog.Warn("fetch failed", "url", url, "reason", reason)
}

// MetricsObserver mirrors events into Prometheus counters. metrics.Init
// must have run before events arrive.
type MetricsObserver struct{}

func (MetricsObserver) Crawled(_ string, depth int) {
	metrics.PagesCrawledTotal.WithLabelValues(strconv.Itoa(depth)).Inc()
}

func (MetricsObserver) Blocked(string) {
	metrics.RobotsBlockedTotal.Inc()
}

func (MetricsObserver) FetchError(_ string, reason string) {
	metrics.FetchErrorsTotal.WithLabelValues(classifyFetchError(reason)).Inc()
}

// classifyFetchError folds free-form failure messages into a bounded label
// set to keep metric cardinality low.
func classifyFetchError(reason string) string {
	switch {
	case strings.Contains(reason, "HTTP status"):
		return "status"
	case strings.Contains(reason, context.Canceled.Error()),
		strings.Contains(reason, context.DeadlineExceeded.Error()):
		return "canceled"
	default:
		return "network"
	}
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) Crawled(url string, depth int) {
	for _, o := range m {
		o.Crawled(url, depth)
	}
}

func (m MultiObserver) Blocked(url string) {
	for _, o := range m {
		o.Blocked(url)
	}
}

func (m MultiObserver) FetchError(url string, reason string) {
	for _, o := range m {
		o.FetchError(url, reason)
	}
}
