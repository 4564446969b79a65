package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"spec-synth/internal/logger"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"

	RequestIDHeader  = "X-Request-Id"
	OperationsHeader = "X-Spec-Operations"
	EnrichedHeader   = "X-Spec-Enriched"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := uuid.NewString()[:8]
		w.Header().Set(RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		switch {
		case ww.status >= 500:
			logger.Error("[%s] %s %s -> %d (%dms)", reqID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
		case ww.status >= 400:
			logger.Warn("[%s] %s %s -> %d (%dms)", reqID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
		default:
			logger.Info("[%s] %s %s -> %d (%dms)", reqID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
		}
	})
}

// GetRequestID returns the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
