package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// SSEHandler streams every bus message to an EventSource client as an
// event named after the message type with the JSON message as data. The stream is receive-only; clients navigate through
// the WebSocket or the HTTP API.
type SSEHandler struct {
	port   Port
	logger *slog.Logger
}

// NewSSEHandler creates the GET /api/events handler.
func NewSSEHandler(port Port, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{port: port, logger: logger}
}

// FormatSSE renders msg as one server-sent event frame.
func FormatSSE(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", msg.Type, data)), nil
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id := "sse-" + uuid.NewString()
	ch := make(chan []byte, DefaultBuffer)
	cancel := h.port.Subscribe(id, func(msg Message) {
		frame, err := FormatSSE(msg)
		if err != nil {
			return
		}
		select {
		case ch <- frame:
		default:
			h.logger.Warn("broadcast: sse client too slow, frame dropped", slog.String("client", id))
		}
	})
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-ch:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
