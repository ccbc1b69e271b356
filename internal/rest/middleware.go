package rest

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/nspid/internal/logging"
)

type requestIDKey struct{}

// RequestID retrieves the request ID assigned by LoggingMiddleware.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// loggingResponseWriter captures the status and the session of a request.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	session    string
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// setSession echoes the session handle and records it for the request log
// line.
func setSession(w http.ResponseWriter, handle string) {
	w.Header().Set(SessionHeader, handle)
	if lrw, ok := w.(*loggingResponseWriter); ok {
		lrw.session = handle
	}
}

// LoggingMiddleware assigns a request ID and logs each request.
func LoggingMiddleware(logger logging.Logger) Middleware {
	restLogger := logger.WithSource("rest")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			msg := auditMessage(r.URL.Path)
			if msg == "" {
				return
			}

			reqLogger := restLogger.WithRequestID(id)
			if wrapped.session != "" {
				reqLogger = reqLogger.WithFields("session", wrapped.session)
			}
			reqLogger.Info(msg,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start).String(),
				"remoteAddr", r.RemoteAddr,
			)
		})
	}
}

// auditMessage returns the log message for a path, or "" for paths that
// are not logged.
func auditMessage(path string) string {
	switch {
	case path == "/nspi/v1/health":
		return ""
	case strings.HasPrefix(path, "/nspi/v1/"):
		return "REST " + strings.TrimPrefix(path, "/nspi/v1/")
	default:
		return "REST request"
	}
}

// CORSMiddleware handles CORS headers.
func CORSMiddleware(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader+", X-Request-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path, "request_id", w.Header().Get("X-Request-ID"))
					writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits the request rate of each session, or of each
// client address for requests without a session. Limiters idle for a
// minute are dropped.
func RateLimitMiddleware(requestsPerSecond int) Middleware {
	limiters := &limiterSet{
		rate:    float64(requestsPerSecond),
		buckets: make(map[string]*tokenBucket),
		idle:    time.Minute,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(rateKey(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateKey identifies the caller a request is charged to.
func rateKey(r *http.Request) string {
	if handle := r.Header.Get(SessionHeader); handle != "" {
		return "session:" + handle
	}
	return "addr:" + clientAddr(r)
}

type limiterSet struct {
	mu        sync.Mutex
	rate      float64
	buckets   map[string]*tokenBucket
	idle      time.Duration
	lastSweep time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.idle {
		for k, b := range s.buckets {
			if now.Sub(b.last) > s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: s.rate, last: now}
		s.buckets[key] = b
	}
	return b.take(s.rate, now)
}

// tokenBucket holds up to one second of requests.
type tokenBucket struct {
	tokens float64
	last   time.Time
}

func (b *tokenBucket) take(rate float64, now time.Time) bool {
	b.tokens = min(rate, b.tokens+now.Sub(b.last).Seconds()*rate)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// clientAddr returns the originating address, honouring proxy headers.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ConnectionTrackingMiddleware tracks in-flight requests.
func ConnectionTrackingMiddleware(handlers *Handlers) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.IncrementConnections()
			defer handlers.DecrementConnections()
			next.ServeHTTP(w, r)
		})
	}
}
