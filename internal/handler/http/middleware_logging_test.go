package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
)

// logRequest прогоняет запрос через withLogging и возвращает запись лога.
func logRequest(t *testing.T, req *http.Request, next http.HandlerFunc) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))

	h := &Handler{logger: logger.Nop()}
	h.withLogging(next).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestWithLogging_StoreWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/store", nil)
	req.Header.Set(utils.WriterTagHeader, "session-1")

	entry := logRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"clocks":{}}`))
	})

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, http.MethodPost, entry["method"])
	assert.Equal(t, "/api/store", entry["uri"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(len(`{"clocks":{}}`)), entry["size"])
	assert.Equal(t, "session-1", entry["writer"])
	assert.Contains(t, entry, "duration")
	assert.NotContains(t, entry, "path")
}

func TestWithLogging_StoreReadCarriesPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/store?path=documents/d1/items", nil)

	entry := logRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	assert.Equal(t, "documents/d1/items", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.NotContains(t, entry, "writer")
}

func TestWithLogging_NoExplicitStatus(t *testing.T) {
	entry := logRequest(t, httptest.NewRequest(http.MethodGet, "/api/version/", nil), func(w http.ResponseWriter, r *http.Request) {})

	assert.Equal(t, float64(0), entry["status"])
	assert.Equal(t, float64(0), entry["size"])
}

func TestWithLogging_PanicPropagates(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	handler := h.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler failure")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/store", nil))
	})
}
