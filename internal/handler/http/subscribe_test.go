package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/service"
	"github.com/MKhiriev/go-task-keeper/models"
)

func newSubscribeServer(t *testing.T, nodes service.NodeService) *httptest.Server {
	t.Helper()
	h := NewHandler(&service.Services{
		AuthService: &mockAuthService{parseTokenFn: func(context.Context, string) (models.Token, error) {
			return models.Token{UserID: "u1"}, nil
		}},
		NodeService: nodes,
	}, logger.Nop())
	h.pingInterval = 20 * time.Millisecond

	srv := httptest.NewServer(h.Init())
	t.Cleanup(srv.Close)
	return srv
}

func dialSubscribe(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/subscribe?path=" + path
	header := http.Header{}
	header.Set("Authorization", validAuthHeader())

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readChange(t *testing.T, conn *websocket.Conn) models.Change {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var change models.Change
	require.NoError(t, conn.ReadJSON(&change))
	return change
}

func TestSubscribe_StreamsInitialValueThenChanges(t *testing.T) {
	updates := make(chan models.Change, 1)
	cancelled := make(chan struct{})

	srv := newSubscribeServer(t, &fakeNodeService{
		subscribeFn: func(_ context.Context, path string) (models.Change, <-chan models.Change, func(), error) {
			assert.Equal(t, "documents/d1/clock", path)
			return models.Change{Path: path, Value: json.RawMessage(`3`)}, updates, func() { close(cancelled) }, nil
		},
	})

	conn := dialSubscribe(t, srv, "documents/d1/clock")

	initial := readChange(t, conn)
	assert.Equal(t, "documents/d1/clock", initial.Path)
	assert.JSONEq(t, `3`, string(initial.Value))

	updates <- models.Change{Path: "documents/d1/clock", Value: json.RawMessage(`4`)}
	next := readChange(t, conn)
	assert.JSONEq(t, `4`, string(next.Value))

	require.NoError(t, conn.Close())
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not released after the client left")
	}
}

func TestSubscribe_MissingValueIsNull(t *testing.T) {
	srv := newSubscribeServer(t, &fakeNodeService{
		subscribeFn: func(_ context.Context, path string) (models.Change, <-chan models.Change, func(), error) {
			return models.Change{Path: path}, make(chan models.Change), func() {}, nil
		},
	})

	conn := dialSubscribe(t, srv, "documents/new/clock")

	change := readChange(t, conn)
	assert.Equal(t, "documents/new/clock", change.Path)
	assert.Empty(t, change.Value)
}

func TestSubscribe_SendsPings(t *testing.T) {
	srv := newSubscribeServer(t, &fakeNodeService{
		subscribeFn: func(_ context.Context, path string) (models.Change, <-chan models.Change, func(), error) {
			return models.Change{Path: path}, make(chan models.Change), func() {}, nil
		},
	})

	conn := dialSubscribe(t, srv, "documents/d1/clock")
	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	readChange(t, conn)
	// control frames are only processed while reading
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestSubscribe_EmptyPath(t *testing.T) {
	h := NewHandler(&service.Services{NodeService: &fakeNodeService{}}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/subscribe", nil)
	rr := httptest.NewRecorder()
	h.subscribe(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubscribe_ServiceError(t *testing.T) {
	h := NewHandler(&service.Services{NodeService: &fakeNodeService{
		subscribeFn: func(context.Context, string) (models.Change, <-chan models.Change, func(), error) {
			return models.Change{}, nil, nil, assert.AnError
		},
	}}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/subscribe?path=documents/d1/clock", nil)
	rr := httptest.NewRecorder()
	h.subscribe(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
