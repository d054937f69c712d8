package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-task-keeper/models"
)

// readTimeout bounds the silence on a subscription. The server pings more
// often than this, so a timeout means the connection is dead.
const readTimeout = 60 * time.Second

type wsSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close implements [Subscription]. It must not be called from the callback.
func (s *wsSubscription) Close() {
	s.cancel()
	<-s.done
}

// Subscribe implements [RemoteStore]. It keeps one websocket open to
// GET /api/subscribe?path=... and redials whenever it drops, at most once per
// reconnect interval. Subscribe never fails because the server is
// unreachable; the feed starts as soon as a dial succeeds.
func (h *httpRemoteStore) Subscribe(ctx context.Context, path string, callback func(models.Change)) (Subscription, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	wsURL, err := websocketURL(h.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &wsSubscription{cancel: cancel, done: make(chan struct{})}
	limiter := rate.NewLimiter(rate.Every(h.reconnectInterval), 1)

	go func() {
		defer close(sub.done)
		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			err := h.stream(ctx, wsURL, callback)
			if ctx.Err() != nil {
				return
			}
			h.logger.Warn().Err(err).
				Str("func", "httpRemoteStore.Subscribe").
				Str("path", path).
				Msg("subscription dropped, reconnecting")
		}
	}()

	return sub, nil
}

func (h *httpRemoteStore) stream(ctx context.Context, wsURL string, callback func(models.Change)) error {
	header := http.Header{}
	if token := h.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial subscription: http %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial subscription: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		var change models.Change
		if err := conn.ReadJSON(&change); err != nil {
			return fmt.Errorf("read change: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		callback(change)
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + subscribeEndpoint
	u.RawQuery = url.Values{"path": {path}}.Encode()

	return u.String(), nil
}
