package hub

import (
	"time"

	"github.com/soar/padmux/internal/input"
	"github.com/soar/padmux/internal/runner"
)

// Server to client message types.
const (
	TypeFull           = "full"
	TypeEvents         = "events"
	TypePlayerSelected = "player_selected"
	TypeError          = "error"
)

// Client to server message types.
const (
	TypeSelectPlayer = "select_player"
	TypeKey          = "key"
	TypeMouseButton  = "mouse_button"
	TypeMouseMove    = "mouse_move"
	TypeMouseWheel   = "mouse_wheel"
)

// WSMessage is a message sent from server to client.
type WSMessage struct {
	Type        string          `json:"type"`
	Seq         uint64          `json:"seq"`
	Timestamp   int64           `json:"timestamp"` // Unix milliseconds
	Data        *input.Snapshot `json:"data,omitempty"`
	Events      []EventPayload  `json:"events,omitempty"`
	PlayerIndex int             `json:"playerIndex,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// EventPayload is the wire form of one input event.
type EventPayload struct {
	Type    string      `json:"type"` // connect, disconnect, button, analog
	Device  string      `json:"device"`
	Index   int         `json:"index"`
	Player  int         `json:"player"`
	Name    string      `json:"name,omitempty"`
	Action  string      `json:"action,omitempty"`
	Native  string      `json:"native,omitempty"`
	Target  string      `json:"target,omitempty"`
	Virtual bool        `json:"virtual,omitempty"`
	Value   *input.Vec2 `json:"value,omitempty"`
	Angle   *float64    `json:"angle,omitempty"` // nil for a zero vector
}

// NewFullMessage wraps a snapshot of every device.
func NewFullMessage(seq uint64, s *input.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      s,
	}
}

// NewEventsMessage wraps the events of one frame.
func NewEventsMessage(seq uint64, events []EventPayload) *WSMessage {
	return &WSMessage{
		Type:      TypeEvents,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Events:    events,
	}
}

// NewPlayerSelectedMessage confirms a select_player request.
func NewPlayerSelectedMessage(playerIndex int) *WSMessage {
	return &WSMessage{
		Type:        TypePlayerSelected,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: playerIndex,
	}
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(err error) *WSMessage {
	return &WSMessage{
		Type:      TypeError,
		Timestamp: time.Now().UnixMilli(),
		Error:     err.Error(),
	}
}

// ClientMessage is a message sent from the client to the server.
type ClientMessage struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"playerIndex,omitempty"`

	// key: Key is a key name ("space", "a"); Code is a HID usage code and
	// wins when both are set.
	Key  string `json:"key,omitempty"`
	Code *int   `json:"code,omitempty"`

	// mouse_button: 0=left, 1=right, 2=middle, 3=back, 4=forward.
	Button int  `json:"button,omitempty"`
	Down   bool `json:"down,omitempty"`

	// mouse_move position, mouse_wheel delta.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// Encode converts routed events to their wire form. Engine names come from
// names.
func Encode(names input.Context, events []runner.Routed) []EventPayload {
	out := make([]EventPayload, 0, len(events))
	for _, r := range events {
		var p EventPayload
		switch e := r.Event.(type) {
		case input.ConnectEvent:
			p = EventPayload{Type: "connect", Device: e.Kind.String(), Index: e.Index, Name: e.Name}
		case input.DisconnectEvent:
			p = EventPayload{Type: "disconnect", Device: e.Kind.String(), Index: e.Index}
		case input.ButtonEvent:
			p = EventPayload{
				Type:    "button",
				Device:  e.Kind.String(),
				Index:   e.Index,
				Action:  e.Action.String(),
				Target:  names.ButtonName(e.Button),
				Virtual: e.Virtual,
			}
			if e.Virtual {
				p.Native = input.AnalogName(e.Kind, e.Source)
			} else {
				p.Native = input.ButtonName(e.Kind, e.Native)
			}
		case input.AnalogEvent:
			v := e.Value
			p = EventPayload{
				Type:   "analog",
				Device: e.Kind.String(),
				Index:  e.Index,
				Native: input.AnalogName(e.Kind, e.Native),
				Target: names.AnalogName(e.Analog),
				Value:  &v,
			}
			if !v.IsZero() {
				angle := e.Angle()
				p.Angle = &angle
			}
		default:
			continue
		}
		p.Player = r.Player
		out = append(out, p)
	}
	return out
}

// ForPlayer returns the events a client following player should see.
// Player 0 follows everything.
func ForPlayer(events []EventPayload, player int) []EventPayload {
	if player == 0 {
		return events
	}
	var out []EventPayload
	for _, e := range events {
		if e.Player == player {
			out = append(out, e)
		}
	}
	return out
}
