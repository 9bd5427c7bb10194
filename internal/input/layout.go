package input

import "github.com/soar/padmux/internal/platform"

// AxisLayout places one raw joystick axis into the gamepad state.
type AxisLayout struct {
	Index   int
	Analog  GamepadAnalog
	Axis    Axis // AxisX or AxisY
	Trigger bool
	Invert  bool
	// Triggers report either the full -32768..32767 range or 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonLayout places one raw joystick button into the gamepad state.
type ButtonLayout struct {
	Index  int
	Button NativeButton
}

// Layout translates a raw joystick into the gamepad state layout. Hat 0,
// when present, drives the D-pad bits.
type Layout struct {
	Name    string
	Axes    []AxisLayout
	Buttons []ButtonLayout
	HasHat  bool
}

func (l *Layout) axis(index int) (AxisLayout, bool) {
	for _, a := range l.Axes {
		if a.Index == index {
			return a, true
		}
	}
	return AxisLayout{}, false
}

func (l *Layout) button(index int) (NativeButton, bool) {
	for _, b := range l.Buttons {
		if b.Index == index {
			return b.Button, true
		}
	}
	return Unbound, false
}

var stickAxes = []AxisLayout{
	{Index: 0, Analog: GamepadAnalogLeftStick, Axis: AxisX},
	{Index: 1, Analog: GamepadAnalogLeftStick, Axis: AxisY, Invert: true},
	{Index: 2, Analog: GamepadAnalogRightStick, Axis: AxisX},
	{Index: 3, Analog: GamepadAnalogRightStick, Axis: AxisY, Invert: true},
}

var triggerAxes = []AxisLayout{
	{Index: 4, Analog: GamepadAnalogLeftTrigger, Axis: AxisX, Trigger: true, RawMin: -32768, RawMax: 32767},
	{Index: 5, Analog: GamepadAnalogRightTrigger, Axis: AxisX, Trigger: true, RawMin: -32768, RawMax: 32767},
}

func axes(groups ...[]AxisLayout) []AxisLayout {
	var out []AxisLayout
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var xboxButtons = []ButtonLayout{
	{0, GamepadA},
	{1, GamepadB},
	{2, GamepadX},
	{3, GamepadY},
	{4, GamepadLeftShoulder},
	{5, GamepadRightShoulder},
	{6, GamepadBack},
	{7, GamepadStart},
	{8, GamepadLeftStick},
	{9, GamepadRightStick},
	{10, GamepadGuide},
	{11, GamepadMisc}, // share on Series X|S
}

var xboxLayout = &Layout{
	Name:    "xbox",
	Axes:    axes(stickAxes, triggerAxes),
	Buttons: xboxButtons,
	HasHat:  true,
}

var playstationLayout = &Layout{
	Name: "playstation",
	Axes: axes(stickAxes, triggerAxes),
	Buttons: []ButtonLayout{
		{0, GamepadA},    // cross
		{1, GamepadB},    // circle
		{2, GamepadX},    // square
		{3, GamepadY},    // triangle
		{4, GamepadBack}, // share / create
		{5, GamepadGuide},
		{6, GamepadStart}, // options
		{7, GamepadLeftStick},
		{8, GamepadRightStick},
		{9, GamepadLeftShoulder},
		{10, GamepadRightShoulder},
		{15, GamepadMisc}, // mic
	},
	HasHat: true,
}

// ZL/ZR are digital on the Switch Pro, so it has no trigger axes.
var switchProLayout = &Layout{
	Name:    "switch_pro",
	Axes:    axes(stickAxes),
	Buttons: xboxButtons[:11],
	HasHat:  true,
}

var genericLayout = &Layout{
	Name:    "generic",
	Axes:    axes(stickAxes, triggerAxes),
	Buttons: xboxButtons[:11],
	HasHat:  true,
}

type deviceKey struct {
	vendor  uint16
	product uint16
}

var knownLayouts = map[deviceKey]*Layout{
	{0x045E, 0x028E}: xboxLayout,        // Xbox 360
	{0x045E, 0x02FF}: xboxLayout,        // Xbox One
	{0x045E, 0x0B12}: xboxLayout,        // Xbox Series X|S
	{0x045E, 0x0B13}: xboxLayout,        // Xbox Series X|S, bluetooth
	{0x054C, 0x0CE6}: playstationLayout, // DualSense
	{0x054C, 0x09CC}: playstationLayout, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationLayout, // DualShock 4 v1
	{0x057E, 0x2009}: switchProLayout,
}

// LayoutFor returns the layout for a vendor/product pair, falling back to
// the generic layout.
func LayoutFor(vendor, product uint16) *Layout {
	if l, ok := knownLayouts[deviceKey{vendor, product}]; ok {
		return l
	}
	return genericLayout
}

// withHat copies the D-pad bits of a raw hat value into b.
func withHat(b GamepadButtons, hat uint8) GamepadButtons {
	b = b.With(GamepadDPadUp, hat&platform.HatUp != 0)
	b = b.With(GamepadDPadRight, hat&platform.HatRight != 0)
	b = b.With(GamepadDPadDown, hat&platform.HatDown != 0)
	return b.With(GamepadDPadLeft, hat&platform.HatLeft != 0)
}
