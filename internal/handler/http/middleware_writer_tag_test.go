package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
)

func TestWithWriterTag(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "header present", header: "session-1", want: "session-1"},
		{name: "header absent", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{logger: logger.Nop()}

			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = utils.GetWriterTagFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodPost, "/api/store", nil)
			if tt.header != "" {
				req.Header.Set(utils.WriterTagHeader, tt.header)
			}
			h.withWriterTag(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}
