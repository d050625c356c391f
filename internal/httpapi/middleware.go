package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/logging"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
)

type domainKey struct{}

// requestLogger logs one line per request once the response is written
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logging.FromContext(r.Context(), logger).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

// resolveDomain loads the {domain} URL parameter into the request context
func resolveDomain(registry *service.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, ok := registry.Lookup(chi.URLParam(r, "domain"))
			if !ok {
				writeError(w, http.StatusNotFound, "unknown domain")
				return
			}
			ctx := context.WithValue(r.Context(), domainKey{}, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func domainFrom(r *http.Request) *service.Domain {
	d, _ := r.Context().Value(domainKey{}).(*service.Domain)
	return d
}
