package input

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
)

type virtualKey struct {
	analog NativeAnalog
	rule   int
}

func (a virtualKey) compare(b virtualKey) int {
	if c := cmp.Compare(a.analog, b.analog); c != 0 {
		return c
	}
	return cmp.Compare(a.rule, b.rule)
}

// core is the edge-detection and emission logic shared by the three
// devices. Each device owns one; nothing in it is shared across devices.
type core struct {
	kind       DeviceKind
	index      int
	push       bool
	continuous bool
	log        *slog.Logger

	profile   *Profile
	hatActive []bool
	virtual   map[virtualKey]bool
	sent      map[NativeAnalog]Vec2
}

func newCore(kind DeviceKind, logger *slog.Logger) core {
	if logger == nil {
		logger = slog.Default()
	}
	return core{
		kind:    kind,
		log:     logger.With("device", kind.String()),
		virtual: make(map[virtualKey]bool),
		sent:    make(map[NativeAnalog]Vec2),
	}
}

// SetEventsEnabled selects push mode (true) or pull mode (false).
func (c *core) SetEventsEnabled(on bool) { c.push = on }

// EventsEnabled reports whether the device is in push mode.
func (c *core) EventsEnabled() bool { return c.push }

// SetContinuous enables ButtonHeld events on every poll while held.
func (c *core) SetContinuous(on bool) { c.continuous = on }

// Index returns the device index carried by its events.
func (c *core) Index() int { return c.index }

// ClearHatActivity forgets which hats were active, so the next poll only
// reports hats that currently have a direction.
func (c *core) ClearHatActivity() {
	clear(c.hatActive)
}

// bound is what bind needs from the device embedding the core.
type bound interface {
	snapshot() DeviceState
	heldButtons() []NativeButton
	nextHats() *[]Vec2
}

// bind switches to profile p. Everything held under the old profile is
// released first: buttons whose engine mapping changes go up under the old
// mapping and down again under the new one, virtual buttons go up and
// active hats report a zero vector.
func (c *core) bind(p *Profile, d bound, sink EventSink) {
	if p == c.profile && len(c.hatActive) == len(p.hats()) {
		return
	}
	old := c.profile
	var remapped []NativeButton
	if p != old {
		for _, b := range d.heldButtons() {
			if old.Button(b) != p.Button(b) {
				remapped = append(remapped, b)
			}
		}
		st := d.snapshot()
		for _, b := range remapped {
			c.emitButton(st, ButtonUp, b, sink)
		}
		if old != nil {
			c.releaseVirtual(d.snapshot(), sink)
		}
		c.releaseHats(d, sink)
	}

	c.profile = p
	c.hatActive = make([]bool, len(p.hats()))
	clear(c.virtual)
	clear(c.sent)
	if hats := d.nextHats(); len(*hats) > len(c.hatActive) {
		*hats = (*hats)[:len(c.hatActive)]
	}
	if p != nil {
		c.log.Debug("profile bound", "index", c.index, "profile", p.Name)
	}

	if len(remapped) > 0 {
		st := d.snapshot()
		for _, b := range remapped {
			c.emitButton(st, ButtonDown, b, sink)
		}
	}
}

// releaseHats reports a zero vector for every active profile hat and
// marks it inactive.
func (c *core) releaseHats(d bound, sink EventSink) {
	base := runtimeOffset(c.kind)
	hats := d.nextHats()
	for i, on := range c.hatActive {
		if !on {
			continue
		}
		c.hatActive[i] = false
		*hats = setHat(*hats, i, Vec2{})
		c.emitAnalog(d.snapshot(), base+NativeAnalog(i), Vec2{}, sink)
	}
}

func (c *core) reset() {
	c.profile = nil
	c.hatActive = nil
	clear(c.virtual)
	clear(c.sent)
}

func (c *core) emitButton(st DeviceState, action ButtonAction, b NativeButton, sink EventSink) {
	sink.Enqueue(ButtonEvent{
		Kind:   c.kind,
		Index:  c.index,
		State:  st,
		Action: action,
		Native: b,
		Button: c.profile.Button(b),
		Source: -1,
	})
}

func (c *core) emitEdge(st DeviceState, b NativeButton, down bool, sink EventSink) {
	action := ButtonUp
	if down {
		action = ButtonDown
	}
	c.emitButton(st, action, b, sink)
}

func (c *core) emitAnalog(st DeviceState, a NativeAnalog, v Vec2, sink EventSink) {
	c.sent[a] = v
	sink.Enqueue(AnalogEvent{
		Kind:   c.kind,
		Index:  c.index,
		State:  st,
		Native: a,
		Analog: c.profile.Analog(a),
		Value:  v,
	})
}

// updateAnalog emits v for a when it moved noticeably since the last
// emission, then evaluates the virtual buttons reading a.
func (c *core) updateAnalog(st DeviceState, a NativeAnalog, v Vec2, sink EventSink) {
	if analogChanged(c.sent[a], v) {
		c.emitAnalog(st, a, v, sink)
	}
	c.evalVirtual(st, a, v, sink)
}

// hatEmitted is the emit step of hat emulation: the value always goes out.
func (c *core) hatEmitted(st DeviceState, a NativeAnalog, v Vec2, sink EventSink) {
	c.emitAnalog(st, a, v, sink)
	c.evalVirtual(st, a, v, sink)
}

func (c *core) evalVirtual(st DeviceState, a NativeAnalog, v Vec2, sink EventSink) {
	if c.profile == nil {
		return
	}
	for i, rule := range c.profile.Virtual[a] {
		key := virtualKey{a, i}
		down := IsDown(v.Vec3(), rule)
		if down == c.virtual[key] {
			continue
		}
		c.virtual[key] = down
		action := ButtonUp
		if down {
			action = ButtonDown
		}
		c.emitVirtual(st, key, action, sink)
	}
}

func (c *core) emitVirtual(st DeviceState, key virtualKey, action ButtonAction, sink EventSink) {
	sink.Enqueue(ButtonEvent{
		Kind:    c.kind,
		Index:   c.index,
		State:   st,
		Action:  action,
		Native:  Unbound,
		Button:  c.profile.Virtual[key.analog][key.rule].Target,
		Virtual: true,
		Source:  key.analog,
	})
}

func (c *core) heldVirtual() []virtualKey {
	keys := slices.SortedFunc(maps.Keys(c.virtual), virtualKey.compare)
	return slices.DeleteFunc(keys, func(k virtualKey) bool { return !c.virtual[k] })
}

// emitHeldVirtual sends ButtonHeld for every virtual button that is down.
func (c *core) emitHeldVirtual(st DeviceState, sink EventSink) {
	if !c.continuous || c.profile == nil {
		return
	}
	for _, k := range c.heldVirtual() {
		c.emitVirtual(st, k, ButtonHeld, sink)
	}
}

func (c *core) releaseVirtual(st DeviceState, sink EventSink) {
	for _, k := range c.heldVirtual() {
		c.emitVirtual(st, k, ButtonUp, sink)
	}
	clear(c.virtual)
}
