package hub

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks connected monitor clients and fans frames out to them.
type Hub struct {
	clients    map[*Client]bool
	unregister chan *Client
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.With("component", "hub"),
	}
}

// Register adds a new client to the hub. The client receives broadcasts
// as soon as it returns. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", "total", n)
	return true
}

// Unregister drops c and closes its send channel. Safe after Run returns.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastByPlayer sends each client the message encode builds for the
// player it follows. encode runs at most once per player; a nil result
// sends nothing.
func (h *Hub) BroadcastByPlayer(encode func(player int) []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	built := make(map[int][]byte)
	for client := range h.clients {
		player := client.PlayerIndex()
		msg, ok := built[player]
		if !ok {
			msg = encode(player)
			built[player] = msg
		}
		if msg == nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// slow reader
			go h.Unregister(client)
		}
	}
}

// Run starts the hub's main loop until ctx is cancelled, then drops every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client disconnected", "total", n)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}
