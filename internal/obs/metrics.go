package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	registrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "market_registrations_total",
		Help: "Accounts created through the register flow.",
	})

	purchasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "market_purchases_total",
		Help: "Successful asset purchases.",
	})

	downloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "market_downloads_total",
		Help: "Successful asset downloads.",
	})

	moderationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_moderations_total",
			Help: "Moderation decisions applied to pending assets.",
		},
		[]string{"decision"},
	)
)

var initOnce sync.Once

// Init registers all metrics in the default registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			registrationsTotal,
			purchasesTotal,
			downloadsTotal,
			moderationsTotal,
		)
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountRegistration records a completed registration.
func CountRegistration() { registrationsTotal.Inc() }

// CountPurchase records a completed purchase.
func CountPurchase() { purchasesTotal.Inc() }

// CountDownload records a completed download.
func CountDownload() { downloadsTotal.Inc() }

// CountModeration records a moderation decision ("approve" or "reject").
func CountModeration(decision string) { moderationsTotal.WithLabelValues(decision).Inc() }

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
