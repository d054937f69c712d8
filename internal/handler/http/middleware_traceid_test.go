package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
)

// traceRequest выполняет запрос через withTraceID и возвращает ответ и
// запрос, который дошёл до следующего обработчика.
func traceRequest(h *Handler, incomingTraceID string) (*httptest.ResponseRecorder, *http.Request) {
	var seen *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/store?path=documents/d1/clock", nil)
	if incomingTraceID != "" {
		req.Header.Set(traceIDHeader, incomingTraceID)
	}
	rr := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rr, req)
	return rr, seen
}

func TestWithTraceID_KeepsIncomingID(t *testing.T) {
	rr, seen := traceRequest(&Handler{logger: logger.Nop()}, "client-trace-1")

	require.NotNil(t, seen)
	assert.Equal(t, "client-trace-1", rr.Header().Get(traceIDHeader))
}

func TestWithTraceID_GeneratesUniqueIDs(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	seen := map[string]bool{}
	for range 20 {
		rr, _ := traceRequest(h, "")
		id := rr.Header().Get(traceIDHeader)

		_, err := uuid.Parse(id)
		require.NoError(t, err, "trace id %q must be a uuid", id)
		assert.False(t, seen[id], "duplicate trace id %s", id)
		seen[id] = true
	}
}

func TestWithTraceID_LoggerInContextCarriesID(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

	_, seen := traceRequest(h, "trace-42")
	require.NotNil(t, seen)

	logger.FromRequest(seen).Info().Msg("handled")
	assert.Contains(t, buf.String(), `"trace_id":"trace-42"`)
}
