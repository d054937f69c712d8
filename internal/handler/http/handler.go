package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/service"
)

// Websocket keep-alive timings of /api/subscribe.
const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

type Handler struct {
	services *service.Services
	upgrader websocket.Upgrader

	pingInterval time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// clients are native processes authenticated by token, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingInterval: defaultPingInterval,
		logger:       logger,
	}
}
