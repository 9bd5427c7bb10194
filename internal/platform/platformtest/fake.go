// Package platformtest provides in-memory platform devices for tests.
package platformtest

import (
	"fmt"

	"github.com/soar/padmux/internal/platform"
)

// Joystick is a scriptable platform.Joystick.
type Joystick struct {
	DeviceName string
	Vendor     uint16
	Product    uint16
	Axes       []int16
	Buttons    []bool
	Hats       []uint8
	Closed     bool
}

// NewJoystick returns a joystick with the given counts of inputs.
func NewJoystick(name string, axes, buttons, hats int) *Joystick {
	return &Joystick{
		DeviceName: name,
		Axes:       make([]int16, axes),
		Buttons:    make([]bool, buttons),
		Hats:       make([]uint8, hats),
	}
}

func (j *Joystick) Name() string      { return j.DeviceName }
func (j *Joystick) VendorID() uint16  { return j.Vendor }
func (j *Joystick) ProductID() uint16 { return j.Product }
func (j *Joystick) NumAxes() int      { return len(j.Axes) }
func (j *Joystick) NumButtons() int   { return len(j.Buttons) }
func (j *Joystick) NumHats() int      { return len(j.Hats) }
func (j *Joystick) Close()            { j.Closed = true }

func (j *Joystick) Axis(i int) int16 {
	if i < 0 || i >= len(j.Axes) {
		return 0
	}
	return j.Axes[i]
}

func (j *Joystick) Button(i int) bool {
	if i < 0 || i >= len(j.Buttons) {
		return false
	}
	return j.Buttons[i]
}

func (j *Joystick) Hat(i int) uint8 {
	if i < 0 || i >= len(j.Hats) {
		return 0
	}
	return j.Hats[i]
}

// Opener hands out the joysticks registered under each device index.
type Opener struct {
	Sticks map[int]*Joystick
	Opens  int
}

// NewOpener returns an Opener with no devices plugged in.
func NewOpener() *Opener {
	return &Opener{Sticks: make(map[int]*Joystick)}
}

// Plug registers js under index.
func (o *Opener) Plug(index int, js *Joystick) {
	js.Closed = false
	o.Sticks[index] = js
}

// OpenJoystick implements platform.JoystickOpener.
func (o *Opener) OpenJoystick(index int) (platform.Joystick, error) {
	js, ok := o.Sticks[index]
	if !ok {
		return nil, fmt.Errorf("no joystick at index %d", index)
	}
	o.Opens++
	js.Closed = false
	return js, nil
}

// Keyboard is a scriptable platform.KeyboardDriver.
type Keyboard struct {
	Keys [platform.NumKeys]bool
}

func (k *Keyboard) KeyboardState() [platform.NumKeys]bool { return k.Keys }

// Mouse is a scriptable platform.MouseDriver.
type Mouse struct {
	State platform.MouseSnapshot
}

// MouseState returns the scripted state and consumes the wheel movement.
func (m *Mouse) MouseState() platform.MouseSnapshot {
	s := m.State
	m.State.WheelX = 0
	m.State.WheelY = 0
	return s
}

// Pump replays a fixed list of events on each PollEvents call, then clears it.
type Pump struct {
	Pending []platform.Event
}

func (p *Pump) PollEvents(fn func(platform.Event)) {
	pending := p.Pending
	p.Pending = nil
	for _, ev := range pending {
		fn(ev)
	}
}
