package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hormatech/blockplant/pkg/logger"
)

// RequestLogger logs each request with a sanitized query string so that
// emails or tokens in URLs never reach the logs.
func RequestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			}
			if q := logger.SanitizeQueryString(r.URL.RawQuery); q != "" {
				attrs = append(attrs, slog.String("query", q))
			}

			log.Info("http request", attrs...)
		})
	}
}
