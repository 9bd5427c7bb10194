// Package platform describes the OS input layer the input core talks to:
// raw events already demultiplexed by type, and the handles used when a
// device is read directly each frame.
package platform

// Event is a raw platform event. The concrete types below are the only
// implementations.
type Event interface {
	platformEvent()
}

// JoyDeviceEvent reports a joystick being plugged in or removed.
type JoyDeviceEvent struct {
	Which int
	Added bool
}

// JoyButtonEvent reports a raw joystick button transition.
type JoyButtonEvent struct {
	Which  int
	Button int
	Down   bool
}

// JoyAxisEvent reports a raw joystick axis sample.
type JoyAxisEvent struct {
	Which int
	Axis  int
	Value int16
}

// JoyHatEvent reports a raw joystick hat value (HatUp|HatRight|... bits).
type JoyHatEvent struct {
	Which int
	Hat   int
	Value uint8
}

// KeyEvent reports a keyboard key transition. Code is a HID usage code.
type KeyEvent struct {
	Code   uint8
	Down   bool
	Repeat bool
}

// MouseButtonEvent reports a mouse button transition. Button is 0-based
// (0=left, 1=right, 2=middle, 3=back, 4=forward).
type MouseButtonEvent struct {
	Button int
	Down   bool
}

// MouseMotionEvent reports pointer movement.
type MouseMotionEvent struct {
	X, Y   float64
	DX, DY float64
}

// MouseWheelEvent reports wheel movement.
type MouseWheelEvent struct {
	X, Y float64
}

func (JoyDeviceEvent) platformEvent()   {}
func (JoyButtonEvent) platformEvent()   {}
func (JoyAxisEvent) platformEvent()     {}
func (JoyHatEvent) platformEvent()      {}
func (KeyEvent) platformEvent()         {}
func (MouseButtonEvent) platformEvent() {}
func (MouseMotionEvent) platformEvent() {}
func (MouseWheelEvent) platformEvent()  {}

// Hat bits as reported by the joystick layer.
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)

// Joystick is an open joystick handle.
type Joystick interface {
	Name() string
	VendorID() uint16
	ProductID() uint16
	NumAxes() int
	NumButtons() int
	NumHats() int
	Axis(i int) int16
	Button(i int) bool
	Hat(i int) uint8
	Close()
}

// JoystickOpener opens joystick handles by device index.
type JoystickOpener interface {
	OpenJoystick(index int) (Joystick, error)
}

// NumKeys is the size of the HID keyboard usage space.
const NumKeys = 256

// KeyboardDriver exposes the current keyboard state for pull-mode reads.
type KeyboardDriver interface {
	KeyboardState() [NumKeys]bool
}

// MouseSnapshot is the current mouse state for pull-mode reads. Wheel holds
// the movement accumulated since the previous read.
type MouseSnapshot struct {
	Buttons uint8
	X, Y    float64
	WheelX  float64
	WheelY  float64
}

// MouseDriver exposes the current mouse state for pull-mode reads.
type MouseDriver interface {
	MouseState() MouseSnapshot
}

// Pump delivers pending platform events.
type Pump interface {
	PollEvents(fn func(Event))
}
