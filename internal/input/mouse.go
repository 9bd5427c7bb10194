package input

import (
	"log/slog"

	"github.com/soar/padmux/internal/platform"
)

// Mouse is the pointer device. Motion and wheel accumulate over a frame
// and are cleared after publishing.
type Mouse struct {
	core
	driver   platform.MouseDriver
	name     string
	open     bool
	captured bool

	cur, next MouseState
	lastPos   Vec2
	hasPos    bool
}

// NewMouse returns a closed mouse reading from driver.
func NewMouse(driver platform.MouseDriver, name string, logger *slog.Logger) *Mouse {
	return &Mouse{
		core:   newCore(KindMouse, logger),
		driver: driver,
		name:   name,
	}
}

// Open attaches the mouse as device index. It fails without a driver.
func (m *Mouse) Open(index int) bool {
	if m.driver == nil {
		return false
	}
	if m.open {
		if m.index == index {
			return true
		}
		m.Close()
	}
	m.open = true
	m.index = index
	m.cur, m.next = MouseState{}, MouseState{}
	m.hasPos = false
	m.reset()
	return true
}

// Close detaches the mouse.
func (m *Mouse) Close() { m.open = false }

// IsOpen reports whether the mouse is open.
func (m *Mouse) IsOpen() bool { return m.open }

// Name returns the device name, or "" when closed.
func (m *Mouse) Name() string {
	if !m.open {
		return ""
	}
	return m.name
}

// SetCaptured freezes the position analog; motion is still reported.
func (m *Mouse) SetCaptured(on bool) { m.captured = on }

// State returns the published state.
func (m *Mouse) State() MouseState { return m.cur.clone() }

func (m *Mouse) snapshot() DeviceState { return m.next.clone() }

func (m *Mouse) heldButtons() []NativeButton {
	var held []NativeButton
	for b := NativeButton(0); b < mouseButtonCount; b++ {
		if m.next.Buttons.Has(b) {
			held = append(held, b)
		}
	}
	return held
}

func (m *Mouse) nextHats() *[]Vec2 { return &m.next.Hats }

func (m *Mouse) moveTo(x, y float64) {
	pos := Vec2{X: x, Y: y}
	if m.hasPos {
		motion := &m.next.Analogs[MouseAnalogMotion]
		motion.X += pos.X - m.lastPos.X
		motion.Y += pos.Y - m.lastPos.Y
	}
	m.lastPos, m.hasPos = pos, true
	if !m.captured {
		m.next.Analogs[MouseAnalogPosition] = pos
	}
}

// Poll runs one frame; see Gamepad.Poll. Mouse analogs are emitted here in
// both modes since they accumulate over the frame.
func (m *Mouse) Poll(p *Profile, sink EventSink) DeviceState {
	if !m.open {
		return m.cur
	}
	m.bind(p, m, sink)

	if !m.push {
		snap := m.driver.MouseState()
		m.next.Buttons = MouseButtons(snap.Buttons) & mouseButtonMask
		m.moveTo(snap.X, snap.Y)
		wheel := &m.next.Analogs[MouseAnalogWheel]
		wheel.X += snap.WheelX
		wheel.Y += snap.WheelY

		st := m.snapshot()
		for b := NativeButton(0); b < mouseButtonCount; b++ {
			if was, now := m.cur.Buttons.Has(b), m.next.Buttons.Has(b); was != now {
				m.emitEdge(st, b, now, sink)
			}
		}
	}

	st := m.snapshot()
	for a := MouseAnalogPosition; a < MouseAnalogRuntime; a++ {
		m.updateAnalog(st, NativeAnalog(a), m.next.Analogs[a], sink)
	}

	if m.continuous {
		for b := NativeButton(0); b < mouseButtonCount; b++ {
			if m.next.Buttons.Has(b) {
				m.emitButton(st, ButtonHeld, b, sink)
			}
		}
		m.emitHeldVirtual(st, sink)
	}

	EmulateHats(p.hats(), m.hatActive, MouseAnalogRuntime, m.next.Buttons.Has, func(id MouseAnalog, v Vec2) {
		m.next.Hats = setHat(m.next.Hats, int(id-MouseAnalogRuntime), v)
		m.hatEmitted(m.snapshot(), NativeAnalog(id), v, sink)
	})

	m.cur = m.next.clone()
	m.next.Analogs[MouseAnalogMotion] = Vec2{}
	m.next.Analogs[MouseAnalogWheel] = Vec2{}
	return m.cur
}

// HandlePlatformEvent applies one mouse event to next. Button edges are
// emitted immediately; analogs wait for Poll.
func (m *Mouse) HandlePlatformEvent(ev platform.Event, p *Profile, sink EventSink) bool {
	if !m.push || !m.open {
		return false
	}
	switch e := ev.(type) {
	case platform.MouseButtonEvent:
		m.bind(p, m, sink)
		b := NativeButton(e.Button)
		if b < 0 || b >= mouseButtonCount {
			return true
		}
		m.setButton(b, e.Down, sink)
	case platform.MouseMotionEvent:
		motion := &m.next.Analogs[MouseAnalogMotion]
		motion.X += e.DX
		motion.Y += e.DY
		m.lastPos, m.hasPos = Vec2{X: e.X, Y: e.Y}, true
		if !m.captured {
			m.next.Analogs[MouseAnalogPosition] = m.lastPos
		}
	case platform.MouseWheelEvent:
		wheel := &m.next.Analogs[MouseAnalogWheel]
		wheel.X += e.X
		wheel.Y += e.Y
	default:
		return false
	}
	return true
}

func (m *Mouse) setButton(b NativeButton, down bool, sink EventSink) {
	if m.next.Buttons.Has(b) == down {
		return
	}
	m.next.Buttons = m.next.Buttons.With(b, down)
	m.emitEdge(m.snapshot(), b, down, sink)
}

func (m *Mouse) release(sink EventSink) {
	for b := NativeButton(0); b < mouseButtonCount; b++ {
		m.setButton(b, false, sink)
	}
	if m.profile != nil {
		m.releaseVirtual(m.snapshot(), sink)
	}
	m.releaseHats(m, sink)
	m.cur = m.next.clone()
}
