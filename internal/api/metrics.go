package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Liczba obsłużonych żądań HTTP",
	}, []string{"method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Czas obsługi żądania HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sessions_created_total",
		Help: "Liczba utworzonych sesji obecności",
	})

	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_scans_total",
		Help: "Wynik skanów kodu QR",
	}, []string{"result"})
)

const (
	scanResultAccepted  = "accepted"
	scanResultNotFound  = "not_found"
	scanResultExpired   = "expired"
	scanResultDuplicate = "duplicate"
	scanResultInvalid   = "invalid"
	scanResultError     = "error"
)

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
