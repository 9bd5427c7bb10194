package input

import (
	"fmt"
	"strings"
)

var gamepadButtonNames = []string{
	GamepadA:             "a",
	GamepadB:             "b",
	GamepadX:             "x",
	GamepadY:             "y",
	GamepadBack:          "back",
	GamepadGuide:         "guide",
	GamepadStart:         "start",
	GamepadLeftStick:     "left_stick",
	GamepadRightStick:    "right_stick",
	GamepadLeftShoulder:  "left_shoulder",
	GamepadRightShoulder: "right_shoulder",
	GamepadDPadUp:        "dpad_up",
	GamepadDPadRight:     "dpad_right",
	GamepadDPadDown:      "dpad_down",
	GamepadDPadLeft:      "dpad_left",
	GamepadMisc:          "misc",
}

var gamepadAnalogNames = []string{
	GamepadAnalogLeftStick:    "left_stick",
	GamepadAnalogRightStick:   "right_stick",
	GamepadAnalogLeftTrigger:  "left_trigger",
	GamepadAnalogRightTrigger: "right_trigger",
	GamepadAnalogDPad:         "dpad",
}

var mouseButtonNames = []string{
	MouseLeft:    "left",
	MouseRight:   "right",
	MouseMiddle:  "middle",
	MouseBack:    "back",
	MouseForward: "forward",
}

var mouseAnalogNames = []string{
	MouseAnalogPosition: "position",
	MouseAnalogMotion:   "motion",
	MouseAnalogWheel:    "wheel",
}

// HID keyboard usage codes with a configuration name.
var keyNames = map[string]NativeButton{
	"enter":        0x28,
	"escape":       0x29,
	"backspace":    0x2A,
	"tab":          0x2B,
	"space":        0x2C,
	"minus":        0x2D,
	"equal":        0x2E,
	"left_brace":   0x2F,
	"right_brace":  0x30,
	"backslash":    0x31,
	"semicolon":    0x33,
	"apostrophe":   0x34,
	"grave":        0x35,
	"comma":        0x36,
	"dot":          0x37,
	"slash":        0x38,
	"caps_lock":    0x39,
	"print_screen": 0x46,
	"scroll_lock":  0x47,
	"pause":        0x48,
	"insert":       0x49,
	"home":         0x4A,
	"page_up":      0x4B,
	"delete":       0x4C,
	"end":          0x4D,
	"page_down":    0x4E,
	"right":        0x4F,
	"left":         0x50,
	"down":         0x51,
	"up":           0x52,
	"num_lock":     0x53,
	"kp_divide":    0x54,
	"kp_multiply":  0x55,
	"kp_minus":     0x56,
	"kp_plus":      0x57,
	"kp_enter":     0x58,
	"kp_dot":       0x63,
	"left_ctrl":    0xE0,
	"left_shift":   0xE1,
	"left_alt":     0xE2,
	"left_gui":     0xE3,
	"right_ctrl":   0xE4,
	"right_shift":  0xE5,
	"right_alt":    0xE6,
	"right_gui":    0xE7,
}

func init() {
	for i := 0; i < 26; i++ {
		keyNames[string(rune('a'+i))] = NativeButton(0x04 + i)
	}
	// 1..9 then 0, as laid out on the top row
	for i := 1; i <= 9; i++ {
		keyNames[fmt.Sprint(i)] = NativeButton(0x1E + i - 1)
		keyNames[fmt.Sprintf("kp_%d", i)] = NativeButton(0x59 + i - 1)
	}
	keyNames["0"] = 0x27
	keyNames["kp_0"] = 0x62
	for i := 1; i <= 12; i++ {
		keyNames[fmt.Sprintf("f%d", i)] = NativeButton(0x3A + i - 1)
	}
}

func lookupIndex(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// LookupButton resolves a configuration button name for kind.
func LookupButton(kind DeviceKind, name string) (NativeButton, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch kind {
	case KindGamepad:
		i, ok := lookupIndex(gamepadButtonNames, name)
		return NativeButton(i), ok
	case KindMouse:
		i, ok := lookupIndex(mouseButtonNames, name)
		return NativeButton(i), ok
	case KindKeyboard:
		b, ok := keyNames[name]
		return b, ok
	}
	return 0, false
}

// LookupAnalog resolves a native (non-hat) analog name for kind.
func LookupAnalog(kind DeviceKind, name string) (NativeAnalog, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch kind {
	case KindGamepad:
		i, ok := lookupIndex(gamepadAnalogNames, name)
		return NativeAnalog(i), ok
	case KindMouse:
		i, ok := lookupIndex(mouseAnalogNames, name)
		return NativeAnalog(i), ok
	}
	return 0, false
}

// ButtonName returns the configuration name of b, or a numeric form.
func ButtonName(kind DeviceKind, b NativeButton) string {
	switch kind {
	case KindGamepad:
		if b >= 0 && int(b) < len(gamepadButtonNames) {
			return gamepadButtonNames[b]
		}
	case KindMouse:
		if b >= 0 && int(b) < len(mouseButtonNames) {
			return mouseButtonNames[b]
		}
	case KindKeyboard:
		for n, code := range keyNames {
			if code == b {
				return n
			}
		}
	}
	return fmt.Sprintf("#%d", int(b))
}

// AnalogName returns the configuration name of a native analog, or a
// numeric form for hats and unknown ids.
func AnalogName(kind DeviceKind, a NativeAnalog) string {
	switch kind {
	case KindGamepad:
		if a >= 0 && int(a) < len(gamepadAnalogNames) {
			return gamepadAnalogNames[a]
		}
	case KindMouse:
		if a >= 0 && int(a) < len(mouseAnalogNames) {
			return mouseAnalogNames[a]
		}
	}
	return fmt.Sprintf("#%d", int(a))
}

// runtimeOffset is the first hat analog id for kind.
func runtimeOffset(kind DeviceKind) NativeAnalog {
	switch kind {
	case KindGamepad:
		return NativeAnalog(GamepadAnalogRuntime)
	case KindMouse:
		return NativeAnalog(MouseAnalogRuntime)
	default:
		return NativeAnalog(KeyboardAnalogRuntime)
	}
}
