package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

// subscribe upgrades the request to a websocket and streams every change of
// the requested path, starting with its current value. The stream ends when
// the client goes away or the server shuts down.
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	path := r.URL.Query().Get("path")
	if path == "" {
		log.Error().Str("func", "*Handler.subscribe").Msg("no path was given")
		http.Error(w, ErrEmptyPath.Error(), http.StatusBadRequest)
		return
	}

	initial, updates, cancel, err := h.services.NodeService.Subscribe(ctx, path)
	if err != nil {
		log.Err(err).Str("func", "*Handler.subscribe").Str("path", path).Msg("error subscribing")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the client
		log.Err(err).Str("func", "*Handler.subscribe").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Debug().Str("func", "*Handler.subscribe").Str("path", path).Msg("subscriber connected")

	// the reader only drains control frames and notices the close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err = writeChange(conn, initial); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.subscribe").Msg("failed to send initial value")
		return
	}

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		case <-gone:
			log.Debug().Str("func", "*Handler.subscribe").Str("path", path).Msg("subscriber disconnected")
			return
		case change, ok := <-updates:
			if !ok {
				return
			}
			if err = writeChange(conn, change); err != nil {
				log.Warn().Err(err).Str("func", "*Handler.subscribe").Msg("failed to send change")
				return
			}
		case <-ping.C:
			if err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeChange(conn *websocket.Conn, change models.Change) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(change)
}
