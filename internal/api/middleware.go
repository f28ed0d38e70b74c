// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const contextKeyOwnerID = contextKey("owner_id")

// requireOwner extracts the authorized owner forwarded by the host
// platform. No header means the request never passed the host's auth
// layer.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-Owner-ID")
		if ownerID == "" {
			s.writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
			return
		}

		if !s.limiter.Allow(ownerID) {
			s.metrics.RateLimitHits.Inc()
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyOwnerID, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerID(r *http.Request) string {
	v, _ := r.Context().Value(contextKeyOwnerID).(string)
	return v
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The chi route pattern keeps metric cardinality bounded;
		// raw paths embed pattern UUIDs.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		elapsed := time.Since(start)
		s.metrics.RequestCounter.WithLabelValues(
			r.Method, route, strconv.Itoa(rec.status)).Inc()
		s.metrics.LatencyHistogram.WithLabelValues(
			r.Method, route).Observe(elapsed.Seconds())

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}
