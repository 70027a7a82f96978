package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/daftar/pkg/slogx"
)

// RequestObserver receives the outcome of every request.
type RequestObserver interface {
	ObserveRequest(status int, duration time.Duration)
}

// ObserveMiddleware reports each request's status and latency to obs. A
// panicking handler is recovered, answered with 500 SERVER_ERROR and
// reported as a 500.
func ObserveMiddleware(obs RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if rec := recover(); rec != nil {
					slogx.FromContext(r.Context()).Error("handler panic",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
					)
					if !sw.wrote {
						WriteError(sw, http.StatusInternalServerError, "SERVER_ERROR")
					}
					sw.status = http.StatusInternalServerError
				}
				obs.ObserveRequest(sw.status, time.Since(start))
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter

	status int
	wrote  bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wrote {
		sw.status = code
		sw.wrote = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wrote = true
	return sw.ResponseWriter.Write(b)
}
