package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"emiscli/internal/infrastructure"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "request-id"

// RequestID middleware generates a unique request ID for each request.
// Uses UUID v4 so IDs stay unique across restarts. This should be the
// FIRST middleware in the chain.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Honour an existing request ID from the client
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		// Add to context - this becomes the trace_id
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = infrastructure.WithTraceID(ctx, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetReqID retrieves the request ID from the context
func GetReqID(ctx context.Context) string {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// StructuredLogger provides Chi-compatible structured logging middleware using slog.
// This should come AFTER RequestID and RealIP middlewares.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			traceID := infrastructure.GetTraceID(ctx)
			if traceID == "" {
				traceID, _ = ctx.Value(RequestIDKey).(string)
			}

			reqLogger := logger
			if traceID != "" {
				reqLogger = logger.With("trace_id", traceID)
			}

			// Wrap response writer to capture status and size
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger.InfoContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(ww, r)

			reqLogger.InfoContext(ctx, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}

// Recoverer recovers from panics and logs them with slog.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					ctx := r.Context()

					logger.ErrorContext(ctx, "panic recovered",
						"panic", rvr,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)

					w.Header().Set("Content-Type", "application/problem+json")
					w.WriteHeader(http.StatusInternalServerError)

					traceID := infrastructure.GetTraceID(ctx)
					if traceID == "" {
						if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
							traceID = reqID
						}
					}

					// RFC 7807 error response
					response := `{"type":"/errors/internal-server-error","title":"Internal Server Error","status":500,"detail":"An unexpected error occurred","trace_id":"` + traceID + `"}`
					w.Write([]byte(response))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter provides rate limiting functionality with logging
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimiter creates a new rate limiter with logging
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Handler implements rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !rl.limiter.Allow() {
			rl.logger.WarnContext(ctx, "rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			w.Header().Set("Content-Type", "application/problem+json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)

			traceID := infrastructure.GetTraceID(ctx)
			response := `{"type":"/errors/rate-limit-exceeded","title":"Too Many Requests","status":429,"detail":"Rate limit exceeded. Please retry after 60 seconds","trace_id":"` + traceID + `"}`
			w.Write([]byte(response))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Timeout middleware with context and logging
func Timeout(timeout time.Duration, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})

			go func() {
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				// Request completed normally
			case <-ctx.Done():
				logger.ErrorContext(r.Context(), "request timeout",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)

				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusGatewayTimeout)

				traceID := infrastructure.GetTraceID(r.Context())
				response := `{"type":"/errors/request-timeout","title":"Request Timeout","status":504,"detail":"The request took too long to process","trace_id":"` + traceID + `"}`
				w.Write([]byte(response))
			}
		})
	}
}

// SecurityHeaders adds security-related headers
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// Compress provides response compression middleware using Chi's implementation
func Compress(level int) func(next http.Handler) http.Handler {
	return middleware.Compress(level)
}

// RealIP extracts the real client IP using Chi's implementation
func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}
