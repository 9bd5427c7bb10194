package input

import (
	"log/slog"

	"github.com/soar/padmux/internal/platform"
)

// Keyboard is the key device. It has no native analogs; every analog it
// reports comes from a profile hat.
type Keyboard struct {
	core
	driver platform.KeyboardDriver
	name   string
	open   bool

	cur, next KeyboardState
}

// NewKeyboard returns a closed keyboard reading from driver.
func NewKeyboard(driver platform.KeyboardDriver, name string, logger *slog.Logger) *Keyboard {
	return &Keyboard{
		core:   newCore(KindKeyboard, logger),
		driver: driver,
		name:   name,
	}
}

// Open attaches the keyboard as device index. It fails without a driver.
func (k *Keyboard) Open(index int) bool {
	if k.driver == nil {
		return false
	}
	if k.open {
		if k.index == index {
			return true
		}
		k.Close()
	}
	k.open = true
	k.index = index
	k.cur, k.next = KeyboardState{}, KeyboardState{}
	k.reset()
	return true
}

// Close detaches the keyboard.
func (k *Keyboard) Close() { k.open = false }

// IsOpen reports whether the keyboard is open.
func (k *Keyboard) IsOpen() bool { return k.open }

// Name returns the device name, or "" when closed.
func (k *Keyboard) Name() string {
	if !k.open {
		return ""
	}
	return k.name
}

// State returns the published state.
func (k *Keyboard) State() KeyboardState { return k.cur.clone() }

func (k *Keyboard) snapshot() DeviceState { return k.next.clone() }

func (k *Keyboard) heldButtons() []NativeButton {
	held := make([]NativeButton, 0, k.next.Keys.Count())
	k.next.Keys.each(func(b NativeButton) { held = append(held, b) })
	return held
}

func (k *Keyboard) nextHats() *[]Vec2 { return &k.next.Hats }

// Poll runs one frame; see Gamepad.Poll.
func (k *Keyboard) Poll(p *Profile, sink EventSink) DeviceState {
	if !k.open {
		return k.cur
	}
	k.bind(p, k, sink)

	if !k.push {
		var keys KeySet
		for code, down := range k.driver.KeyboardState() {
			if down {
				keys = keys.With(NativeButton(code), true)
			}
		}
		k.next.Keys = keys

		st := k.snapshot()
		var changed KeySet
		for i := range changed {
			changed[i] = k.cur.Keys[i] ^ keys[i]
		}
		changed.each(func(b NativeButton) {
			k.emitEdge(st, b, keys.Has(b), sink)
		})
	}

	if k.continuous {
		st := k.snapshot()
		k.next.Keys.each(func(b NativeButton) {
			k.emitButton(st, ButtonHeld, b, sink)
		})
		k.emitHeldVirtual(st, sink)
	}

	EmulateHats(p.hats(), k.hatActive, KeyboardAnalogRuntime, k.next.Keys.Has, func(id KeyboardAnalog, v Vec2) {
		k.next.Hats = setHat(k.next.Hats, int(id-KeyboardAnalogRuntime), v)
		k.hatEmitted(k.snapshot(), NativeAnalog(id), v, sink)
	})

	k.cur = k.next.clone()
	return k.cur
}

// HandlePlatformEvent applies one key event to next and emits its edge.
// Repeats are consumed without effect.
func (k *Keyboard) HandlePlatformEvent(ev platform.Event, p *Profile, sink EventSink) bool {
	if !k.push || !k.open {
		return false
	}
	e, ok := ev.(platform.KeyEvent)
	if !ok {
		return false
	}
	if e.Repeat {
		return true
	}
	k.bind(p, k, sink)
	b := NativeButton(e.Code)
	if k.next.Keys.Has(b) == e.Down {
		return true
	}
	k.next.Keys = k.next.Keys.With(b, e.Down)
	k.emitEdge(k.snapshot(), b, e.Down, sink)
	return true
}

func (k *Keyboard) release(sink EventSink) {
	k.next.Keys.each(func(b NativeButton) {
		k.next.Keys = k.next.Keys.With(b, false)
		k.emitEdge(k.snapshot(), b, false, sink)
	})
	if k.profile != nil {
		k.releaseVirtual(k.snapshot(), sink)
	}
	k.releaseHats(k, sink)
	k.cur = k.next.clone()
}
