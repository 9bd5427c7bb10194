// Package sdlinput drives joysticks through SDL3. Every function here must
// run on the thread that called Init.
package sdlinput

import (
	"fmt"
	"log/slog"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padmux/internal/platform"
)

// Backend is the SDL joystick subsystem. Device indexes are SDL joystick
// instance ids.
type Backend struct {
	log  *slog.Logger
	open map[sdl.JoystickID]*stick
}

// New returns an uninitialised backend.
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		log:  logger.With("component", "sdl"),
		open: make(map[sdl.JoystickID]*stick),
	}
}

// Init starts the joystick subsystem. Joysticks already plugged in are
// reported as added events by the first PollEvents.
func (b *Backend) Init() error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdl init: %s", sdl.GetError())
	}
	b.log.Info("SDL3 joystick subsystem initialized", "joysticks", len(sdl.GetJoysticks()))
	return nil
}

// Quit closes every joystick still open and shuts SDL down.
func (b *Backend) Quit() {
	for id, s := range b.open {
		sdl.CloseJoystick(s.js)
		delete(b.open, id)
	}
	sdl.Quit()
}

// OpenJoystick implements platform.JoystickOpener.
func (b *Backend) OpenJoystick(index int) (platform.Joystick, error) {
	id := sdl.JoystickID(index)
	if s, ok := b.open[id]; ok {
		return s, nil
	}
	js := sdl.OpenJoystick(id)
	if js == nil {
		return nil, fmt.Errorf("open joystick %d: %s", index, sdl.GetError())
	}
	s := &stick{
		b:       b,
		id:      sdl.GetJoystickID(js),
		js:      js,
		name:    sdl.GetJoystickName(js),
		vendor:  sdl.GetJoystickVendor(js),
		product: sdl.GetJoystickProduct(js),
		axes:    int(sdl.GetNumJoystickAxes(js)),
		buttons: int(sdl.GetNumJoystickButtons(js)),
		hats:    int(sdl.GetNumJoystickHats(js)),
	}
	b.open[s.id] = s
	b.log.Info("joystick opened",
		"id", index, "name", s.name,
		"vid", fmt.Sprintf("%04X", s.vendor), "pid", fmt.Sprintf("%04X", s.product),
		"axes", s.axes, "buttons", s.buttons, "hats", s.hats)
	return s, nil
}

// PollEvents implements platform.Pump. Non-joystick events are dropped.
func (b *Backend) PollEvents(fn func(platform.Event)) {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			fn(platform.JoyDeviceEvent{Which: int(event.JDevice().Which), Added: true})
		case sdl.EventJoystickRemoved:
			fn(platform.JoyDeviceEvent{Which: int(event.JDevice().Which)})
		case sdl.EventJoystickButtonDown, sdl.EventJoystickButtonUp:
			be := event.JButton()
			fn(platform.JoyButtonEvent{
				Which:  int(be.Which),
				Button: int(be.Button),
				Down:   event.Type() == sdl.EventJoystickButtonDown,
			})
		case sdl.EventJoystickAxisMotion:
			ae := event.JAxis()
			fn(platform.JoyAxisEvent{Which: int(ae.Which), Axis: int(ae.Axis), Value: int16(ae.Value)})
		case sdl.EventJoystickHatMotion:
			he := event.JHat()
			fn(platform.JoyHatEvent{Which: int(he.Which), Hat: int(he.Hat), Value: uint8(he.Value)})
		}
	}
}

type stick struct {
	b  *Backend
	id sdl.JoystickID
	js *sdl.Joystick

	name            string
	vendor, product uint16
	axes, buttons   int
	hats            int
}

func (s *stick) Name() string      { return s.name }
func (s *stick) VendorID() uint16  { return s.vendor }
func (s *stick) ProductID() uint16 { return s.product }
func (s *stick) NumAxes() int      { return s.axes }
func (s *stick) NumButtons() int   { return s.buttons }
func (s *stick) NumHats() int      { return s.hats }

func (s *stick) Axis(i int) int16 {
	if i < 0 || i >= s.axes {
		return 0
	}
	return sdl.GetJoystickAxis(s.js, int32(i))
}

func (s *stick) Button(i int) bool {
	if i < 0 || i >= s.buttons {
		return false
	}
	return sdl.GetJoystickButton(s.js, int32(i))
}

func (s *stick) Hat(i int) uint8 {
	if i < 0 || i >= s.hats {
		return 0
	}
	return sdl.GetJoystickHat(s.js, int32(i))
}

func (s *stick) Close() {
	if _, ok := s.b.open[s.id]; !ok {
		return
	}
	delete(s.b.open, s.id)
	sdl.CloseJoystick(s.js)
	s.b.log.Info("joystick closed", "id", int(s.id), "name", s.name)
}
