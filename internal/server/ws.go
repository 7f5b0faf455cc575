package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = 5 * time.Second

// FramesHandler pushes every rendered frame to WebSocket clients as a binary
// JPEG message.
type FramesHandler struct {
	hub    *FrameHub
	logger *log.Logger
}

// NewFramesHandler creates a new FramesHandler reading from hub.
func NewFramesHandler(hub *FrameHub, logger *log.Logger) *FramesHandler {
	return &FramesHandler{hub: hub, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	frames, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Keep connection alive by reading messages
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case data, ok := <-frames:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		}
	}
}
