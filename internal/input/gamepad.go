package input

import (
	"log/slog"

	"github.com/soar/padmux/internal/platform"
)

// DefaultDeadZone applies to gamepad axes whose profile declares none.
var DefaultDeadZone = DeadZone{Threshold: 0.05, Max: 1}

// Gamepad is one joystick-backed device.
type Gamepad struct {
	core
	opener platform.JoystickOpener
	js     platform.Joystick
	layout *Layout
	name   string

	cur, next  GamepadState
	dpadActive [1]bool
}

// NewGamepad returns a closed gamepad that opens joysticks through opener.
func NewGamepad(opener platform.JoystickOpener, logger *slog.Logger) *Gamepad {
	return &Gamepad{
		core:   newCore(KindGamepad, logger),
		opener: opener,
	}
}

// Open opens the joystick at index. It is a no-op when already open on the
// same index and reopens when open on another. On failure the gamepad
// stays closed.
func (g *Gamepad) Open(index int) bool {
	if g.js != nil {
		if g.index == index {
			return true
		}
		g.Close()
	}
	js, err := g.opener.OpenJoystick(index)
	if err != nil {
		g.log.Debug("open failed", "index", index, "error", err)
		return false
	}
	g.js = js
	g.index = index
	g.name = js.Name()
	g.layout = LayoutFor(js.VendorID(), js.ProductID())
	g.cur, g.next = GamepadState{}, GamepadState{}
	g.dpadActive = [1]bool{}
	g.reset()
	g.log.Info("gamepad opened", "index", index, "name", g.name, "layout", g.layout.Name,
		"axes", js.NumAxes(), "buttons", js.NumButtons(), "hats", js.NumHats())
	return true
}

// Close releases the joystick. Closing a closed gamepad does nothing.
func (g *Gamepad) Close() {
	if g.js == nil {
		return
	}
	g.js.Close()
	g.log.Debug("gamepad closed", "index", g.index)
	g.js = nil
	g.name = ""
}

// IsOpen reports whether a joystick is open.
func (g *Gamepad) IsOpen() bool { return g.js != nil }

// Name returns the platform name, or "" when closed.
func (g *Gamepad) Name() string { return g.name }

// Layout returns the raw layout in use, or nil when closed.
func (g *Gamepad) Layout() *Layout {
	if g.js == nil {
		return nil
	}
	return g.layout
}

// State returns the published state.
func (g *Gamepad) State() GamepadState { return g.cur.clone() }

func (g *Gamepad) snapshot() DeviceState { return g.next.clone() }

func (g *Gamepad) heldButtons() []NativeButton {
	var held []NativeButton
	for b := NativeButton(0); b < gamepadButtonCount; b++ {
		if g.next.Buttons.Has(b) {
			held = append(held, b)
		}
	}
	return held
}

func (g *Gamepad) nextHats() *[]Vec2 { return &g.next.Hats }

func (g *Gamepad) deadZone(a GamepadAnalog) *DeadZone {
	if dz := g.profile.DeadZone(NativeAnalog(a)); dz != nil {
		return dz
	}
	dz := DefaultDeadZone
	return &dz
}

func (g *Gamepad) axisValue(a AxisLayout, raw int16) float64 {
	if a.Trigger {
		raw = NormalizeTrigger(raw, a.RawMin, a.RawMax)
	}
	return Normalize(raw, g.deadZone(a.Analog), a.Invert)
}

func setComponent(v *Vec2, axis Axis, f float64) {
	if axis == AxisY {
		v.Y = f
	} else {
		v.X = f
	}
}

// Poll runs one frame. In pull mode it reads the joystick and emits edges
// against the published state; in push mode the platform events already
// did that. Hats run last in both modes, then next is published.
func (g *Gamepad) Poll(p *Profile, sink EventSink) DeviceState {
	if g.js == nil {
		return g.cur
	}
	g.bind(p, g, sink)

	if !g.push {
		g.read()
		st := g.snapshot()
		for b := NativeButton(0); b < gamepadButtonCount; b++ {
			if was, now := g.cur.Buttons.Has(b), g.next.Buttons.Has(b); was != now {
				g.emitEdge(st, b, now, sink)
			}
		}
		for a := GamepadAnalogLeftStick; a < GamepadAnalogDPad; a++ {
			g.updateAnalog(st, NativeAnalog(a), g.next.Analogs[a], sink)
		}
	}

	if g.continuous {
		st := g.snapshot()
		for b := NativeButton(0); b < gamepadButtonCount; b++ {
			if g.next.Buttons.Has(b) {
				g.emitButton(st, ButtonHeld, b, sink)
			}
		}
		g.emitHeldVirtual(st, sink)
	}

	EmulateHats(dpadHat, g.dpadActive[:], GamepadAnalogDPad, g.next.Buttons.Has, func(id GamepadAnalog, v Vec2) {
		g.next.Analogs[id] = v
		g.hatEmitted(g.snapshot(), NativeAnalog(id), v, sink)
	})
	EmulateHats(p.hats(), g.hatActive, GamepadAnalogRuntime, g.next.Buttons.Has, func(id GamepadAnalog, v Vec2) {
		g.next.Hats = setHat(g.next.Hats, int(id-GamepadAnalogRuntime), v)
		g.hatEmitted(g.snapshot(), NativeAnalog(id), v, sink)
	})

	g.cur = g.next.clone()
	return g.cur
}

// read refreshes next from the joystick: buttons first, then axes.
func (g *Gamepad) read() {
	var buttons GamepadButtons
	numButtons := g.js.NumButtons()
	for _, b := range g.layout.Buttons {
		if b.Index < numButtons {
			buttons = buttons.With(b.Button, g.js.Button(b.Index))
		}
	}
	if g.layout.HasHat && g.js.NumHats() > 0 {
		buttons = withHat(buttons, g.js.Hat(0))
	}
	g.next.Buttons = buttons

	numAxes := g.js.NumAxes()
	for _, a := range g.layout.Axes {
		if a.Index >= numAxes {
			continue
		}
		setComponent(&g.next.Analogs[a.Analog], a.Axis, g.axisValue(a, g.js.Axis(a.Index)))
	}
}

// HandlePlatformEvent applies one joystick event to next and emits what it
// changed. It reports false when the gamepad is closed, in pull mode, or
// the event belongs to another device.
func (g *Gamepad) HandlePlatformEvent(ev platform.Event, p *Profile, sink EventSink) bool {
	if !g.push || g.js == nil {
		return false
	}
	switch e := ev.(type) {
	case platform.JoyButtonEvent:
		if e.Which != g.index {
			return false
		}
		g.bind(p, g, sink)
		if b, ok := g.layout.button(e.Button); ok {
			g.setButton(b, e.Down, sink)
		}
	case platform.JoyHatEvent:
		if e.Which != g.index {
			return false
		}
		g.bind(p, g, sink)
		if e.Hat == 0 && g.layout.HasHat {
			next := withHat(g.next.Buttons, e.Value)
			for b := GamepadDPadUp; b <= GamepadDPadLeft; b++ {
				g.setButton(b, next.Has(b), sink)
			}
		}
	case platform.JoyAxisEvent:
		if e.Which != g.index {
			return false
		}
		g.bind(p, g, sink)
		a, ok := g.layout.axis(e.Axis)
		if !ok {
			return true
		}
		f := 0.0
		raw := e.Value
		if a.Trigger {
			raw = NormalizeTrigger(raw, a.RawMin, a.RawMax)
		}
		if BeyondThreshold(raw, g.deadZone(a.Analog)) {
			f = g.axisValue(a, e.Value)
		}
		setComponent(&g.next.Analogs[a.Analog], a.Axis, f)
		g.updateAnalog(g.snapshot(), NativeAnalog(a.Analog), g.next.Analogs[a.Analog], sink)
	default:
		return false
	}
	return true
}

func (g *Gamepad) setButton(b NativeButton, down bool, sink EventSink) {
	if g.next.Buttons.Has(b) == down {
		return
	}
	g.next.Buttons = g.next.Buttons.With(b, down)
	g.emitEdge(g.snapshot(), b, down, sink)
}

// release emits up events for everything held, as if the device went idle.
// Active hats, the D-pad included, report a zero vector.
func (g *Gamepad) release(sink EventSink) {
	for b := NativeButton(0); b < gamepadButtonCount; b++ {
		g.setButton(b, false, sink)
	}
	if g.profile != nil {
		g.releaseVirtual(g.snapshot(), sink)
	}
	if g.dpadActive[0] {
		g.dpadActive[0] = false
		g.next.Analogs[GamepadAnalogDPad] = Vec2{}
		g.emitAnalog(g.snapshot(), NativeAnalog(GamepadAnalogDPad), Vec2{}, sink)
	}
	g.releaseHats(g, sink)
	g.cur = g.next.clone()
}
