package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shiritori/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub          *app.GameHub
	startingWord string
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, startingWord string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:          hub,
		startingWord: startingWord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(conn, h.hub, clientID, h.startingWord, h.logger)

	h.logger.Info("websocket connected", "clientID", clientID)

	client.sendConnected()
	client.Run()

	h.logger.Info("websocket disconnected", "clientID", clientID)
}
