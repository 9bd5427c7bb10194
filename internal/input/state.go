package input

import (
	"encoding/json"
	"math/bits"
	"slices"
	"strings"
)

// DeviceKind identifies one of the three device families.
type DeviceKind int

const (
	KindGamepad DeviceKind = iota
	KindMouse
	KindKeyboard
)

func (k DeviceKind) String() string {
	switch k {
	case KindGamepad:
		return "gamepad"
	case KindMouse:
		return "mouse"
	case KindKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// ParseDeviceKind parses the configuration spelling of a kind.
func ParseDeviceKind(s string) (DeviceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gamepad", "joystick", "controller":
		return KindGamepad, true
	case "mouse":
		return KindMouse, true
	case "keyboard":
		return KindKeyboard, true
	}
	return 0, false
}

// NativeButton is a device-kind specific button id; for gamepads and mice
// it is a bit index, for keyboards a HID usage code.
type NativeButton int

// Unbound marks an unassigned hat direction.
const Unbound NativeButton = -1

// NativeAnalog is a device-kind specific analog id.
type NativeAnalog int

// DeviceState is the read-only view shared by the three state layouts.
type DeviceState interface {
	Pressed(b NativeButton) bool
	Analog(a NativeAnalog) Vec2
}

// Gamepad buttons, in bit order. The D-pad group is contiguous.
const (
	GamepadA NativeButton = iota
	GamepadB
	GamepadX
	GamepadY
	GamepadBack
	GamepadGuide
	GamepadStart
	GamepadLeftStick
	GamepadRightStick
	GamepadLeftShoulder
	GamepadRightShoulder
	GamepadDPadUp
	GamepadDPadRight
	GamepadDPadDown
	GamepadDPadLeft
	GamepadMisc
	gamepadButtonCount
)

// GamepadAnalog is a gamepad analog id. Ids at or above
// GamepadAnalogRuntime belong to profile-declared hats.
type GamepadAnalog int

const (
	GamepadAnalogLeftStick GamepadAnalog = iota
	GamepadAnalogRightStick
	GamepadAnalogLeftTrigger
	GamepadAnalogRightTrigger
	GamepadAnalogDPad
	GamepadAnalogRuntime
)

// GamepadButtons is the gamepad button bitmask.
type GamepadButtons uint32

func (m GamepadButtons) Has(b NativeButton) bool {
	if b < 0 || b >= gamepadButtonCount {
		return false
	}
	return m&(1<<uint(b)) != 0
}

func (m GamepadButtons) With(b NativeButton, down bool) GamepadButtons {
	if b < 0 || b >= gamepadButtonCount {
		return m
	}
	if down {
		return m | 1<<uint(b)
	}
	return m &^ (1 << uint(b))
}

// GamepadState is the gamepad state layout.
type GamepadState struct {
	Buttons GamepadButtons             `json:"buttons"`
	Analogs [GamepadAnalogRuntime]Vec2 `json:"analogs"`
	Hats    []Vec2                     `json:"hats,omitempty"`
}

func (s GamepadState) Pressed(b NativeButton) bool { return s.Buttons.Has(b) }

func (s GamepadState) Analog(a NativeAnalog) Vec2 {
	return analogAt(s.Analogs[:], s.Hats, int(a), int(GamepadAnalogRuntime))
}

func (s GamepadState) clone() GamepadState {
	s.Hats = slices.Clone(s.Hats)
	return s
}

// Mouse buttons, in bit order.
const (
	MouseLeft NativeButton = iota
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
	mouseButtonCount
)

// MouseAnalog is a mouse analog id.
type MouseAnalog int

const (
	MouseAnalogPosition MouseAnalog = iota
	MouseAnalogMotion
	MouseAnalogWheel
	MouseAnalogRuntime
)

// MouseButtons is the mouse button bitmask.
type MouseButtons uint8

const mouseButtonMask = MouseButtons(1<<mouseButtonCount - 1)

func (m MouseButtons) Has(b NativeButton) bool {
	if b < 0 || b >= mouseButtonCount {
		return false
	}
	return m&(1<<uint(b)) != 0
}

func (m MouseButtons) With(b NativeButton, down bool) MouseButtons {
	if b < 0 || b >= mouseButtonCount {
		return m
	}
	if down {
		return m | 1<<uint(b)
	}
	return m &^ (1 << uint(b))
}

// MouseState is the mouse state layout.
type MouseState struct {
	Buttons MouseButtons             `json:"buttons"`
	Analogs [MouseAnalogRuntime]Vec2 `json:"analogs"`
	Hats    []Vec2                   `json:"hats,omitempty"`
}

func (s MouseState) Pressed(b NativeButton) bool { return s.Buttons.Has(b) }

func (s MouseState) Analog(a NativeAnalog) Vec2 {
	return analogAt(s.Analogs[:], s.Hats, int(a), int(MouseAnalogRuntime))
}

func (s MouseState) clone() MouseState {
	s.Hats = slices.Clone(s.Hats)
	return s
}

// KeyboardAnalog is a keyboard analog id. Keyboards have no native analogs,
// so every id belongs to a profile-declared hat.
type KeyboardAnalog int

const KeyboardAnalogRuntime KeyboardAnalog = 0

// KeySet is a 256-bit bitmap indexed by HID usage code.
type KeySet [4]uint64

func (k KeySet) Has(b NativeButton) bool {
	if b < 0 || b >= 256 {
		return false
	}
	return k[b>>6]&(1<<(uint(b)&63)) != 0
}

func (k KeySet) With(b NativeButton, down bool) KeySet {
	if b < 0 || b >= 256 {
		return k
	}
	if down {
		k[b>>6] |= 1 << (uint(b) & 63)
	} else {
		k[b>>6] &^= 1 << (uint(b) & 63)
	}
	return k
}

// Count returns the number of pressed keys.
func (k KeySet) Count() int {
	n := 0
	for _, w := range k {
		n += bits.OnesCount64(w)
	}
	return n
}

// each calls fn for every key set in k, in ascending order.
func (k KeySet) each(fn func(NativeButton)) {
	for i, w := range k {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			fn(NativeButton(i*64 + b))
			w &^= 1 << uint(b)
		}
	}
}

// MarshalJSON encodes the set as the ascending list of held usage codes.
func (k KeySet) MarshalJSON() ([]byte, error) {
	codes := make([]NativeButton, 0, k.Count())
	k.each(func(b NativeButton) { codes = append(codes, b) })
	return json.Marshal(codes)
}

func (k *KeySet) UnmarshalJSON(data []byte) error {
	var codes []NativeButton
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*k = KeySet{}
	for _, b := range codes {
		*k = k.With(b, true)
	}
	return nil
}

// KeyboardState is the keyboard state layout.
type KeyboardState struct {
	Keys KeySet `json:"keys"`
	Hats []Vec2 `json:"hats,omitempty"`
}

func (s KeyboardState) Pressed(b NativeButton) bool { return s.Keys.Has(b) }

func (s KeyboardState) Analog(a NativeAnalog) Vec2 {
	return analogAt(nil, s.Hats, int(a), int(KeyboardAnalogRuntime))
}

func (s KeyboardState) clone() KeyboardState {
	s.Hats = slices.Clone(s.Hats)
	return s
}

func analogAt(native, hats []Vec2, id, runtime int) Vec2 {
	if id < 0 {
		return Vec2{}
	}
	if id < runtime {
		return native[id]
	}
	if h := id - runtime; h < len(hats) {
		return hats[h]
	}
	return Vec2{}
}

// setHat stores v as hat i, growing hats as needed.
func setHat(hats []Vec2, i int, v Vec2) []Vec2 {
	for len(hats) <= i {
		hats = append(hats, Vec2{})
	}
	hats[i] = v
	return hats
}
