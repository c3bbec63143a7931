package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketHandler attaches each connected browser tab to the bus as its own
// surface: NAVIGATE frames it sends are published under its connection id,
// and every message from other surfaces is written back to it as JSON.
type WebSocketHandler struct {
	port     Port
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the GET /ws handler.
func NewWebSocketHandler(port Port, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		port:   port,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Surfaces are served from the same local server; the token guard
			// in front of this handler is the access check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("broadcast: websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	id := "ws-" + uuid.NewString()
	log := h.logger.With(slog.String("client", id))
	log.Info("broadcast: websocket surface connected")
	defer log.Info("broadcast: websocket surface disconnected")

	out := make(chan Message, DefaultBuffer)
	cancel := h.port.Subscribe(id, func(msg Message) {
		select {
		case out <- msg:
		default:
			log.Warn("broadcast: websocket client too slow, message dropped")
		}
	})
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case msg := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("broadcast: ignoring malformed frame", slog.String("error", err.Error()))
			continue
		}
		if msg.Type != TypeNavigate {
			continue
		}
		h.port.Publish(id, msg)
	}
}
