// Package http serves the tracker as a JSON API.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thali/internal/cache"
	"thali/internal/core"
	applog "thali/internal/log"
	"thali/internal/tracker"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "thali_http_request_duration_seconds",
	Help:    "HTTP request latency by route and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})

type Server struct {
	http.Server
	tracker     *tracker.Tracker
	logger      *applog.Logger
	rateLimiter *rateLimiter
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, tr *tracker.Tracker, logger *applog.Logger) *Server {
	logger = applog.OrDefault(logger).WithComponent(applog.ComponentHTTP)
	mux := http.NewServeMux()
	s := &Server{
		tracker:     tr,
		logger:      logger,
		rateLimiter: newRateLimiter(60, time.Minute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/days/{date}", s.handleGetDay)
	mux.HandleFunc("POST /api/days/{date}/toggle/{meal}", s.handleToggle)
	mux.HandleFunc("POST /api/days/{date}/commit", s.handleCommit)
	mux.HandleFunc("DELETE /api/days/{date}", s.handleDelete)
	mux.HandleFunc("POST /api/days/{date}/unlock", s.handleUnlock)

	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("DELETE /api/records", s.handleClear)
	mux.HandleFunc("GET /api/aggregates", s.handleAggregates)

	var h http.Handler = mux
	h = withMetrics(h)
	h = s.withRateLimit(h)
	h = withSecurityHeaders(h)
	h = applog.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// RateLimiter exposes the limiter's stale-client sweep to a cache janitor.
func (s *Server) RateLimiter() cache.Cleaner {
	return s.rateLimiter
}

// withSecurityHeaders sets the headers every API response carries and flags
// suspicious requests.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if detectSuspiciousRequest(r) {
			suspiciousRequests.Inc()
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, extractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				"user_agent", r.UserAgent())
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withRateLimit throttles state-changing requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			clientIP := extractClientIP(r)
			if !s.rateLimiter.allow(clientIP) {
				applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withMetrics must wrap the mux directly: the mux records the matched
// pattern on the request it is given.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the store with a read of today's date.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	_, _, err := s.tracker.StateOf(r.Context(), s.tracker.Today())
	if err != nil && statusFor(err) != http.StatusUnprocessableEntity {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) today() core.Date {
	return s.tracker.Today()
}
