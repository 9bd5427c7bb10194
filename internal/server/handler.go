package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/soar/padmux/internal/hub"
)

// The socket injects keyboard and mouse input, so only pages served by
// padmux itself (or clients sending no Origin) may connect.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func handleWebSocket(h *hub.Hub, b *hub.Broadcaster, remote hub.RemoteInput, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := hub.NewClient(h, conn)
		if !h.Register(client) {
			conn.Close()
			return
		}

		// Full snapshot first so the page has something to diff against.
		b.SendInitialState(client)

		go client.WritePump()
		go client.ReadPump(remote)
	}
}
