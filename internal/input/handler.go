package input

import (
	"errors"
	"log/slog"

	"github.com/soar/padmux/internal/platform"
)

// Options configures a Handler.
type Options struct {
	Joysticks platform.JoystickOpener
	Keyboard  platform.KeyboardDriver
	Mouse     platform.MouseDriver

	KeyboardName string
	MouseName    string

	// Push* select platform events (true) over per-frame reads.
	PushGamepad  bool
	PushMouse    bool
	PushKeyboard bool
	Continuous   bool

	Profiles    *ProfileSet
	Assignments Assignments

	Logger *slog.Logger
}

// Handler is the single input entry point: one keyboard, one mouse and a
// gamepad manager sharing one profile set.
type Handler struct {
	sink     EventSink
	log      *slog.Logger
	profiles *ProfileSet
	assign   Assignments

	keyboard *Keyboard
	mouse    *Mouse
	gamepads *GamepadManager

	keyboardRef ProfileRef
	mouseRef    ProfileRef
}

// NewHandler builds a handler emitting into sink. The keyboard and mouse
// are opened as device 0 when a driver is given.
func NewHandler(opts Options, sink EventSink) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	set := opts.Profiles
	if set == nil {
		set = NewProfileSet()
	}
	logger = logger.With("component", "input")

	h := &Handler{
		sink:        sink,
		log:         logger,
		profiles:    set,
		assign:      opts.Assignments,
		keyboardRef: NoProfile,
		mouseRef:    NoProfile,
	}

	h.keyboard = NewKeyboard(opts.Keyboard, opts.KeyboardName, logger)
	h.keyboard.SetEventsEnabled(opts.PushKeyboard)
	h.keyboard.SetContinuous(opts.Continuous)
	if h.keyboard.Open(0) {
		sink.Enqueue(ConnectEvent{Kind: KindKeyboard, Index: 0, Name: h.keyboard.Name()})
	}

	h.mouse = NewMouse(opts.Mouse, opts.MouseName, logger)
	h.mouse.SetEventsEnabled(opts.PushMouse)
	h.mouse.SetContinuous(opts.Continuous)
	if h.mouse.Open(0) {
		sink.Enqueue(ConnectEvent{Kind: KindMouse, Index: 0, Name: h.mouse.Name()})
	}

	var joysticks platform.JoystickOpener = closedOpener{}
	if opts.Joysticks != nil {
		joysticks = opts.Joysticks
	}
	h.gamepads = NewGamepadManager(joysticks, set, opts.Assignments.Gamepads, logger)
	h.gamepads.SetEventsEnabled(opts.PushGamepad)
	h.gamepads.SetContinuous(opts.Continuous)

	h.resolveSingletons()
	return h
}

var errNoJoysticks = errors.New("no joystick backend")

type closedOpener struct{}

func (closedOpener) OpenJoystick(int) (platform.Joystick, error) {
	return nil, errNoJoysticks
}

func (h *Handler) resolveSingletons() {
	h.keyboardRef = singletonRef(h.profiles, KindKeyboard, h.assign.Keyboards, h.keyboard.name)
	h.mouseRef = singletonRef(h.profiles, KindMouse, h.assign.Mice, h.mouse.name)
}

func singletonRef(set *ProfileSet, kind DeviceKind, bindings map[string]string, device string) ProfileRef {
	name, ok := resolveBinding(bindings, device)
	if !ok {
		return NoProfile
	}
	return set.Lookup(kind, name)
}

// Keyboard returns the keyboard device.
func (h *Handler) Keyboard() *Keyboard { return h.keyboard }

// Mouse returns the mouse device.
func (h *Handler) Mouse() *Mouse { return h.mouse }

// Gamepads returns the gamepad manager.
func (h *Handler) Gamepads() *GamepadManager { return h.gamepads }

// Profiles returns the profile set in use.
func (h *Handler) Profiles() *ProfileSet { return h.profiles }

// Poll runs one frame: keyboard, then mouse, then gamepads.
func (h *Handler) Poll() {
	h.keyboard.Poll(h.profiles.Get(h.keyboardRef), h.sink)
	h.mouse.Poll(h.profiles.Get(h.mouseRef), h.sink)
	h.gamepads.PollAll(h.sink)
}

// HandlePlatformEvent routes one platform event to its device and reports
// whether it was consumed.
func (h *Handler) HandlePlatformEvent(ev platform.Event) bool {
	switch ev.(type) {
	case platform.KeyEvent:
		return h.keyboard.HandlePlatformEvent(ev, h.profiles.Get(h.keyboardRef), h.sink)
	case platform.MouseButtonEvent, platform.MouseMotionEvent, platform.MouseWheelEvent:
		return h.mouse.HandlePlatformEvent(ev, h.profiles.Get(h.mouseRef), h.sink)
	case platform.JoyDeviceEvent, platform.JoyButtonEvent, platform.JoyAxisEvent, platform.JoyHatEvent:
		return h.gamepads.Dispatch(ev, h.sink)
	}
	return false
}

// Reload replaces the profiles and bindings. Devices pick up their new
// profile on the next event or poll.
func (h *Handler) Reload(set *ProfileSet, a Assignments) {
	if set == nil {
		set = NewProfileSet()
	}
	h.profiles = set
	h.assign = a
	h.gamepads.Reload(set, a.Gamepads)
	h.resolveSingletons()
	h.log.Info("profiles reloaded", "profiles", set.Len())
}

// Player returns the player index bound to a device, or 0.
func (h *Handler) Player(kind DeviceKind, index int) int {
	var name string
	switch kind {
	case KindKeyboard:
		name = h.keyboard.Name()
	case KindMouse:
		name = h.mouse.Name()
	case KindGamepad:
		if pad := h.gamepads.lookup(index); pad != nil {
			name = pad.Name()
		}
	}
	if name == "" {
		return 0
	}
	return h.assign.Player(name)
}

// GamepadSnapshot is the published state of one gamepad.
type GamepadSnapshot struct {
	Index  int          `json:"index"`
	Name   string       `json:"name"`
	Layout string       `json:"layout"`
	Player int          `json:"player"`
	State  GamepadState `json:"state"`
}

// Snapshot is a copy of every published device state.
type Snapshot struct {
	Keyboard KeyboardState     `json:"keyboard"`
	Mouse    MouseState        `json:"mouse"`
	Gamepads []GamepadSnapshot `json:"gamepads"`
}

// Snapshot copies the current published states.
func (h *Handler) Snapshot() Snapshot {
	s := Snapshot{
		Keyboard: h.keyboard.State(),
		Mouse:    h.mouse.State(),
	}
	h.gamepads.Each(func(index int, pad *Gamepad) {
		s.Gamepads = append(s.Gamepads, GamepadSnapshot{
			Index:  index,
			Name:   pad.Name(),
			Layout: pad.Layout().Name,
			Player: h.Player(KindGamepad, index),
			State:  pad.State(),
		})
	})
	return s
}

// Release emits up events for every held button on every open device, as
// if the user let go of everything at once.
func (h *Handler) Release() {
	if h.keyboard.IsOpen() {
		h.keyboard.release(h.sink)
	}
	if h.mouse.IsOpen() {
		h.mouse.release(h.sink)
	}
	h.gamepads.ReleaseAll(h.sink)
}

// Close closes every device.
func (h *Handler) Close() {
	h.gamepads.Close()
	h.mouse.Close()
	h.keyboard.Close()
}
