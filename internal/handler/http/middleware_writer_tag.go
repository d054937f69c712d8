package http

import (
	"net/http"

	"github.com/MKhiriev/go-task-keeper/internal/utils"
)

// withWriterTag stores the writer tag header, when present, in the request
// context. A tag in the request body takes precedence over it.
func (h *Handler) withWriterTag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tag := r.Header.Get(utils.WriterTagHeader); tag != "" {
			r = r.WithContext(utils.WithWriterTag(r.Context(), tag))
		}
		next.ServeHTTP(w, r)
	})
}
