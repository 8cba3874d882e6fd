package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_verification_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	verificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_verification_attempts_total",
			Help: "Email verification attempts by outcome",
		},
		[]string{"outcome"},
	)
	verificationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_verification_requests_total",
			Help: "Verification emails requested by outcome",
		},
		[]string{"outcome"},
	)
)

// PrometheusMiddleware records request duration labelled by route pattern
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestDuration.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status)).Observe(duration)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Recorder feeds verification outcomes from the service layer into Prometheus
type Recorder struct{}

var _ domain.VerificationRecorder = Recorder{}

// RecordVerificationAttempt counts a verification by outcome, "verified" or an error kind
func (Recorder) RecordVerificationAttempt(outcome string) {
	verificationAttempts.WithLabelValues(outcome).Inc()
}

// RecordVerificationRequest counts a resend request by outcome
func RecordVerificationRequest(outcome string) {
	verificationRequests.WithLabelValues(outcome).Inc()
}
