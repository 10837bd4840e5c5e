// Package errors provides HTTP error-handling middleware for the TAIGA
// optimization service.
package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RecoveryMiddleware returns a middleware that recovers from panics, logs
// the stack, and answers with a 500.
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					fields := []zap.Field{
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					}
					if r != nil {
						fields = append(fields,
							zap.String("method", r.Method),
							zap.String("path", r.URL.Path),
							zap.String("query", r.URL.RawQuery),
						)
					}
					logger.Error("recovered from panic", fields...)

					http.Error(w, http.StatusText(http.StatusInternalServerError),
						http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorHandler returns a middleware that logs every response with a 4xx or
// 5xx status.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				logger.Error("request error",
					zap.Int("status", ww.Status()),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("query", r.URL.RawQuery),
					zap.String("ip", r.RemoteAddr),
				)
			}
		})
	}
}
