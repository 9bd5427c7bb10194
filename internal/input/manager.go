package input

import (
	"fmt"
	"log/slog"

	"github.com/soar/padmux/internal/platform"
)

// GamepadManager owns the gamepads, indexed by platform device index. Slots
// are created on first reference and never removed, so a device that
// reconnects under the same index keeps its slot.
type GamepadManager struct {
	opener     platform.JoystickOpener
	log        *slog.Logger
	push       bool
	continuous bool

	pads  []*Gamepad
	order []int

	profiles *ProfileSet
	bindings map[string]string
	assigned map[int]string
	refs     map[int]ProfileRef
}

// NewGamepadManager returns an empty manager resolving profiles from set
// through bindings (platform name to profile name).
func NewGamepadManager(opener platform.JoystickOpener, set *ProfileSet, bindings map[string]string, logger *slog.Logger) *GamepadManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &GamepadManager{
		opener:   opener,
		log:      logger,
		profiles: set,
		bindings: bindings,
		assigned: make(map[int]string),
		refs:     make(map[int]ProfileRef),
	}
}

// SetEventsEnabled selects push or pull mode for every gamepad, present
// and future.
func (m *GamepadManager) SetEventsEnabled(on bool) {
	m.push = on
	for _, i := range m.order {
		m.pads[i].SetEventsEnabled(on)
	}
}

// SetContinuous enables held events for every gamepad.
func (m *GamepadManager) SetContinuous(on bool) {
	m.continuous = on
	for _, i := range m.order {
		m.pads[i].SetContinuous(on)
	}
}

// Gamepad returns the gamepad at index, creating the slot and opening it
// on first reference. The result may be closed if opening failed.
func (m *GamepadManager) Gamepad(index int) *Gamepad {
	if index < 0 {
		return nil
	}
	for len(m.pads) <= index {
		m.pads = append(m.pads, nil)
	}
	pad := m.pads[index]
	if pad == nil {
		pad = NewGamepad(m.opener, m.log)
		pad.SetEventsEnabled(m.push)
		pad.SetContinuous(m.continuous)
		m.pads[index] = pad
		m.order = append(m.order, index)
	}
	if !pad.IsOpen() && pad.Open(index) {
		m.resolve(index)
	}
	return pad
}

func (m *GamepadManager) lookup(index int) *Gamepad {
	if index < 0 || index >= len(m.pads) {
		return nil
	}
	return m.pads[index]
}

// resolve picks the profile for index: an explicit assignment, else the
// binding for the exact platform name, else the wildcard binding.
func (m *GamepadManager) resolve(index int) {
	pad := m.pads[index]
	name, ok := m.assigned[index]
	if !ok {
		name, ok = resolveBinding(m.bindings, pad.Name())
	}
	ref := NoProfile
	if ok {
		ref = m.profiles.Lookup(KindGamepad, name)
	}
	m.refs[index] = ref
	m.log.Debug("gamepad profile", "index", index, "name", pad.Name(), "profile", name, "found", ref != NoProfile)
}

// Profile returns the profile bound to index, or nil.
func (m *GamepadManager) Profile(index int) *Profile {
	ref, ok := m.refs[index]
	if !ok {
		return nil
	}
	return m.profiles.Get(ref)
}

// Assign binds index to the named profile, overriding the name bindings.
func (m *GamepadManager) Assign(index int, profile string) error {
	if m.profiles.Lookup(KindGamepad, profile) == NoProfile {
		return fmt.Errorf("assign gamepad %d: %w: %q", index, ErrUnknownProfile, profile)
	}
	m.assigned[index] = profile
	if pad := m.lookup(index); pad != nil && pad.IsOpen() {
		m.resolve(index)
	}
	return nil
}

// Reload swaps the profile set and bindings and re-resolves every open
// gamepad. Assignments naming a profile that no longer exists are dropped.
func (m *GamepadManager) Reload(set *ProfileSet, bindings map[string]string) {
	m.profiles = set
	m.bindings = bindings
	for index, name := range m.assigned {
		if set.Lookup(KindGamepad, name) == NoProfile {
			m.log.Warn("dropping gamepad assignment", "index", index, "profile", name)
			delete(m.assigned, index)
		}
	}
	for _, i := range m.order {
		if m.pads[i].IsOpen() {
			m.resolve(i)
		}
	}
}

// OnDeviceConnected opens the gamepad at index and enqueues a connect
// event if it was not already open.
func (m *GamepadManager) OnDeviceConnected(index int, sink EventSink) {
	if pad := m.lookup(index); pad != nil && pad.IsOpen() {
		return
	}
	pad := m.Gamepad(index)
	if pad == nil || !pad.IsOpen() {
		return
	}
	sink.Enqueue(ConnectEvent{Kind: KindGamepad, Index: index, Name: pad.Name()})
}

// OnDeviceDisconnected releases held buttons, closes the gamepad and
// enqueues a disconnect event. The slot is kept.
func (m *GamepadManager) OnDeviceDisconnected(index int, sink EventSink) {
	pad := m.lookup(index)
	if pad == nil || !pad.IsOpen() {
		return
	}
	pad.release(sink)
	pad.Close()
	sink.Enqueue(DisconnectEvent{Kind: KindGamepad, Index: index})
}

// Dispatch routes a joystick platform event to its gamepad. Device events
// are always consumed.
func (m *GamepadManager) Dispatch(ev platform.Event, sink EventSink) bool {
	var which int
	switch e := ev.(type) {
	case platform.JoyDeviceEvent:
		if e.Added {
			m.OnDeviceConnected(e.Which, sink)
		} else {
			m.OnDeviceDisconnected(e.Which, sink)
		}
		return true
	case platform.JoyButtonEvent:
		which = e.Which
	case platform.JoyAxisEvent:
		which = e.Which
	case platform.JoyHatEvent:
		which = e.Which
	default:
		return false
	}
	pad := m.lookup(which)
	if pad == nil {
		return false
	}
	return pad.HandlePlatformEvent(ev, m.Profile(which), sink)
}

// PollAll polls every open gamepad in the order they were first seen.
func (m *GamepadManager) PollAll(sink EventSink) {
	for _, i := range m.order {
		if pad := m.pads[i]; pad.IsOpen() {
			pad.Poll(m.Profile(i), sink)
		}
	}
}

// Each calls fn for every open gamepad in insertion order.
func (m *GamepadManager) Each(fn func(index int, pad *Gamepad)) {
	for _, i := range m.order {
		if pad := m.pads[i]; pad.IsOpen() {
			fn(i, pad)
		}
	}
}

// ReleaseAll emits up events for everything held on every open gamepad.
func (m *GamepadManager) ReleaseAll(sink EventSink) {
	for _, i := range m.order {
		if pad := m.pads[i]; pad.IsOpen() {
			pad.release(sink)
		}
	}
}

// Close closes every gamepad.
func (m *GamepadManager) Close() {
	for _, i := range m.order {
		m.pads[i].Close()
	}
}
