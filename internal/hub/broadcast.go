package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/soar/padmux/internal/input"
	"github.com/soar/padmux/internal/runner"
)

const fullSyncInterval = 5 * time.Second

// Broadcaster forwards frames from the input loop to the hub: each frame's
// events as they arrive, and the latest snapshot periodically.
type Broadcaster struct {
	hub    *Hub
	frames <-chan runner.Frame

	mu       sync.Mutex
	names    input.Context
	snapshot input.Snapshot
	seq      uint64
}

func NewBroadcaster(h *Hub, frames <-chan runner.Frame, names input.Context) *Broadcaster {
	return &Broadcaster{
		hub:    h,
		frames: frames,
		names:  names,
	}
}

// SetNames replaces the engine names used to label events.
func (b *Broadcaster) SetNames(names input.Context) {
	b.mu.Lock()
	b.names = names
	b.mu.Unlock()
}

// Run forwards frames until the frame channel closes or ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-b.frames:
			if !ok {
				return
			}
			b.Forward(f)
		case <-ticker.C:
			b.sendFull()
		case <-ctx.Done():
			return
		}
	}
}

// Forward broadcasts one frame.
func (b *Broadcaster) Forward(f runner.Frame) {
	b.mu.Lock()
	b.seq = f.Seq
	if f.Snapshot != nil {
		b.snapshot = *f.Snapshot
	}
	events := Encode(b.names, f.Events)
	b.mu.Unlock()

	if len(events) == 0 {
		return
	}
	b.hub.BroadcastByPlayer(func(player int) []byte {
		mine := ForPlayer(events, player)
		if len(mine) == 0 {
			return nil
		}
		return b.marshal(NewEventsMessage(f.Seq, mine))
	})
}

// SendInitialState sends the latest snapshot to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	if data := b.full(); data != nil {
		c.Send(data)
	}
}

func (b *Broadcaster) sendFull() {
	if data := b.full(); data != nil {
		b.hub.BroadcastByPlayer(func(int) []byte { return data })
	}
}

func (b *Broadcaster) full() []byte {
	b.mu.Lock()
	s := b.snapshot
	seq := b.seq
	b.mu.Unlock()
	return b.marshal(NewFullMessage(seq, &s))
}

func (b *Broadcaster) marshal(m *WSMessage) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		b.hub.log.Error("marshal message", "type", m.Type, "error", err)
		return nil
	}
	return data
}
