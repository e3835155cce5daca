package bridge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Name:      "requests_total",
		Help:      "Exchanges handled, by method and status.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bridge",
		Name:      "request_duration_seconds",
		Help:      "Time from entry to exchange completion.",
		Buckets:   prometheus.DefBuckets,
	})

	responseBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bridge",
		Name:      "response_bytes_total",
		Help:      "Body bytes written to exchanges.",
	})

	asyncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Name:      "async_completions_total",
		Help:      "Terminal states reached by asynchronous responses.",
	}, []string{"outcome"})
)

// Metrics returns middleware that records exchange counts, durations, and
// response sizes. Async completion outcomes are recorded by the controller
// itself, labeled "completed" or "aborted".
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			requestDuration.Observe(time.Since(start).Seconds())
			responseBytes.Add(float64(rec.size))
		})
	}
}

// MetricsHandler exposes the default prometheus registry, for mounting at
// /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
