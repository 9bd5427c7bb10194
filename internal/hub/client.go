package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/soar/padmux/internal/input"
	"github.com/soar/padmux/internal/platform"
)

// RemoteInput receives keyboard and mouse input typed into the monitor.
type RemoteInput interface {
	Key(code uint8, down bool)
	MouseButton(button int, down bool)
	MouseMove(x, y float64)
	MouseWheel(x, y float64)
}

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrBadPlayer      = errors.New("player index must not be negative")
	ErrBadKey         = errors.New("unknown key")
	ErrBadButton      = errors.New("mouse button out of range")
)

// Client represents a connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	player atomic.Int64 // player index followed, 0 for all

	// Input this client holds down, touched only by the read pump.
	keys    [platform.NumKeys]bool
	buttons uint8
}

// NewClient creates a new Client attached to the hub. It follows every
// player until it selects one.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// PlayerIndex returns the player this client follows.
func (c *Client) PlayerIndex() int {
	return int(c.player.Load())
}

// SetPlayerIndex sets the player index for this client.
func (c *Client) SetPlayerIndex(index int) {
	c.player.Store(int64(index))
}

// Send queues msg unless the client is gone or its buffer is full.
func (c *Client) Send(msg []byte) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) sendMessage(m *WSMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		c.hub.log.Error("marshal message", "type", m.Type, "error", err)
		return
	}
	c.Send(data)
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads client commands until the connection fails. Keyboard
// and mouse messages go to remote.
func (c *Client) ReadPump(remote RemoteInput) {
	defer func() {
		c.releaseHeld(remote)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("bad client message", "error", err)
			c.sendMessage(NewErrorMessage(err))
			continue
		}
		if err := c.handle(msg, remote); err != nil {
			c.hub.log.Debug("client message rejected", "type", msg.Type, "error", err)
			c.sendMessage(NewErrorMessage(err))
		}
	}
}

func (c *Client) handle(msg ClientMessage, remote RemoteInput) error {
	switch msg.Type {
	case TypeSelectPlayer:
		if msg.PlayerIndex < 0 {
			return fmt.Errorf("%w: %d", ErrBadPlayer, msg.PlayerIndex)
		}
		c.SetPlayerIndex(msg.PlayerIndex)
		c.sendMessage(NewPlayerSelectedMessage(msg.PlayerIndex))
		c.hub.log.Debug("client switched player", "player", msg.PlayerIndex)
	case TypeKey:
		code, err := keyCode(msg)
		if err != nil {
			return err
		}
		remote.Key(code, msg.Down)
		c.keys[code] = msg.Down
	case TypeMouseButton:
		if msg.Button < 0 || msg.Button > 4 {
			return fmt.Errorf("%w: %d", ErrBadButton, msg.Button)
		}
		remote.MouseButton(msg.Button, msg.Down)
		if msg.Down {
			c.buttons |= 1 << msg.Button
		} else {
			c.buttons &^= 1 << msg.Button
		}
	case TypeMouseMove:
		remote.MouseMove(msg.X, msg.Y)
	case TypeMouseWheel:
		remote.MouseWheel(msg.X, msg.Y)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// releaseHeld lifts every key and mouse button the client left down, so a
// closed tab cannot leave remote input stuck.
func (c *Client) releaseHeld(remote RemoteInput) {
	for code, down := range c.keys {
		if down {
			remote.Key(uint8(code), false)
			c.keys[code] = false
		}
	}
	for b := 0; b < 8; b++ {
		if c.buttons&(1<<b) != 0 {
			remote.MouseButton(b, false)
		}
	}
	c.buttons = 0
}

func keyCode(msg ClientMessage) (uint8, error) {
	if msg.Code != nil {
		if *msg.Code < 0 || *msg.Code >= platform.NumKeys {
			return 0, fmt.Errorf("%w: code %d", ErrBadKey, *msg.Code)
		}
		return uint8(*msg.Code), nil
	}
	b, ok := input.LookupButton(input.KindKeyboard, msg.Key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadKey, msg.Key)
	}
	return uint8(b), nil
}
