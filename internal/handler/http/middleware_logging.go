package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
)

// withLogging writes one access log line per request. Store and subscribe
// requests also carry the remote path and the writer tag.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		event := logger.FromRequest(r).Info().
			Str("method", r.Method).
			Str("uri", r.URL.Path).
			Int("status", lw.status).
			Int("size", lw.size).
			Dur("duration", time.Since(start))
		if path := r.URL.Query().Get("path"); path != "" {
			event = event.Str("path", path)
		}
		if writer := r.Header.Get(utils.WriterTagHeader); writer != "" {
			event = event.Str("writer", writer)
		}
		event.Send()
	})
}
