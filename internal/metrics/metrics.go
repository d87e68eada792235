// Package metrics exposes Prometheus instruments for the badge service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streakcal"

var (
	rendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "requests_total",
		Help:      "Rendered images by outcome and format.",
	}, []string{"outcome", "format"})
	renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Time from request to finished image, upstream fetch included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of profile fetches.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"result"})
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Rendered artifact cache lookups by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(rendersTotal, renderDuration, upstreamDuration, cacheLookups)
}

// ObserveRender counts one finished request.
func ObserveRender(outcome, format string, elapsed time.Duration) {
	rendersTotal.WithLabelValues(outcome, format).Inc()
	renderDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveUpstream records the latency of one profile fetch.
func ObserveUpstream(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// CacheHit counts a cache lookup that returned an artifact.
func CacheHit() { cacheLookups.WithLabelValues("hit").Inc() }

// CacheMiss counts a cache lookup that found nothing.
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

// CacheError counts a cache lookup that failed.
func CacheError() { cacheLookups.WithLabelValues("error").Inc() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
