// Package metrics provides Prometheus instrumentation for the storefront.
//
// HTTP metrics are recorded by Middleware, database timings by the GORM
// callbacks in pkg/database, and shop metrics (orders, checkout rejections)
// by the checkout service. Handler exposes everything on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var dbBuckets = []float64{.001, .005, .01, .025, .05, .1, .5, 1}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// HTTP, database, queue and cache.
var (
	RequestDuration = histogram("http", "request_duration_seconds",
		"Time spent serving a request.", prometheus.DefBuckets, "method", "path", "status")
	RequestTotal = counter("http", "requests_total",
		"Requests served, by route pattern and status.", "method", "path", "status")
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
		Help: "Requests being served right now.",
	})

	// operation is the GORM callback family: query, create, update, delete, row, raw.
	DBQueryDuration = histogram("db", "query_duration_seconds",
		"Time spent in a database statement.", dbBuckets, "operation")

	QueueJobsProcessed = counter("queue", "jobs_processed_total",
		"Queue jobs finished, by outcome.", "status")
	QueueJobDuration = histogram("queue", "job_duration_seconds",
		"Time spent handling a queue job.", prometheus.DefBuckets, "job_type")

	CacheHits   = counter("cache", "hits_total", "Cache lookups that found a value.", "prefix")
	CacheMisses = counter("cache", "misses_total", "Cache lookups that found nothing.", "prefix")
)

// Shop.
var (
	OrdersPlaced = counter("checkout", "orders_placed_total",
		"Orders committed, by delivery type.", "delivery")

	// reason: empty_cart, below_minimum, payment_declined, insufficient_stock.
	CheckoutRejected = counter("checkout", "rejected_total",
		"Checkout attempts refused, by reason.", "reason")

	PaymentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "checkout", Name: "payment_authorization_seconds",
		Help: "Latency of payment authorization calls.", Buckets: prometheus.DefBuckets,
	})
)

// DefaultRegistry holds the storefront collectors plus the Go runtime and
// process collectors.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestDuration, RequestTotal, RequestInFlight,
		DBQueryDuration,
		QueueJobsProcessed, QueueJobDuration,
		CacheHits, CacheMisses,
		OrdersPlaced, CheckoutRejected, PaymentDuration,
	)
}

// Register adds a collector owned by another package (the gRPC
// interceptors, for one).
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// routeLabel is the matched chi pattern ("/produto/{id}"), falling back to
// the raw path for unmatched requests.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Middleware counts and times every request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			labels := []string{r.Method, routeLabel(r), strconv.Itoa(sw.code)}
			RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(labels...).Inc()
		})
	}
}

// Handler serves the registry in text and OpenMetrics formats.
func Handler() http.HandlerFunc {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{EnableOpenMetrics: true}).ServeHTTP
}

//	defer metrics.ObserveDBQuery("query", time.Now())
func ObserveDBQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func RecordQueueJob(jobType, status string, start time.Time) {
	QueueJobsProcessed.WithLabelValues(status).Inc()
	QueueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}

func RecordCacheLookup(prefix string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(prefix).Inc()
	} else {
		CacheMisses.WithLabelValues(prefix).Inc()
	}
}
