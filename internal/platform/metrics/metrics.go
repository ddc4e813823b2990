// Package metrics expone métricas Prometheus: HTTP y de dominio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	threadsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threads_resolved_total",
			Help: "Thread resolutions, labeled by whether a new thread was created",
		},
		[]string{"created"},
	)

	messagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Chat messages accepted by the store",
		},
	)

	feedSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_subscriptions_active",
			Help: "Open live thread subscriptions",
		},
	)

	imageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Image uploads by backend and result",
		},
		[]string{"backend", "result"},
	)
)

// Middleware registra métricas HTTP por patrón de ruta de chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// WrapResponseWriter conserva Flusher (SSE).
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// patrón de chi para no explotar cardinalidad
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler sirve /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ThreadResolved(created bool) {
	threadsResolved.WithLabelValues(strconv.FormatBool(created)).Inc()
}

func MessageSent() {
	messagesSent.Inc()
}

func SubscriptionOpened() {
	feedSubscriptions.Inc()
}

func SubscriptionClosed() {
	feedSubscriptions.Dec()
}

// ImageUpload cuenta un upload; result es "ok" o "error".
func ImageUpload(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	imageUploads.WithLabelValues(backend, result).Inc()
}
