package input

import (
	"math"
	"testing"

	"github.com/soar/padmux/internal/platform"
	"github.com/soar/padmux/internal/platform/platformtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonEvents(events []Event) []ButtonEvent {
	var out []ButtonEvent
	for _, ev := range events {
		if b, ok := ev.(ButtonEvent); ok {
			out = append(out, b)
		}
	}
	return out
}

func analogEvents(events []Event) []AnalogEvent {
	var out []AnalogEvent
	for _, ev := range events {
		if a, ok := ev.(AnalogEvent); ok {
			out = append(out, a)
		}
	}
	return out
}

func countButton(events []Event, b NativeButton, action ButtonAction) int {
	n := 0
	for _, e := range buttonEvents(events) {
		if !e.Virtual && e.Native == b && e.Action == action {
			n++
		}
	}
	return n
}

// newXboxStick returns a resting Xbox 360 style joystick: six axes with
// triggers released, twelve buttons and one hat.
func newXboxStick(name string) *platformtest.Joystick {
	js := platformtest.NewJoystick(name, 6, 12, 1)
	js.Vendor, js.Product = 0x045E, 0x028E
	js.Axes[4], js.Axes[5] = math.MinInt16, math.MinInt16
	return js
}

func openPad(t *testing.T, index int) (*Gamepad, *platformtest.Joystick) {
	t.Helper()
	js := newXboxStick("Pad")
	op := platformtest.NewOpener()
	op.Plug(index, js)
	g := NewGamepad(op, nil)
	require.True(t, g.Open(index))
	return g, js
}

func TestGamepadOpenClose(t *testing.T) {
	js := newXboxStick("Pad")
	other := newXboxStick("Other")
	op := platformtest.NewOpener()
	op.Plug(1, js)
	op.Plug(2, other)

	g := NewGamepad(op, nil)
	assert.Empty(t, g.Name())
	assert.False(t, g.Open(7), "nothing at index 7")
	assert.False(t, g.IsOpen())

	require.True(t, g.Open(1))
	assert.Equal(t, "Pad", g.Name())
	assert.Equal(t, "xbox", g.Layout().Name)
	require.True(t, g.Open(1))
	assert.Equal(t, 1, op.Opens, "same index does not reopen")

	require.True(t, g.Open(2))
	assert.True(t, js.Closed, "reopening on another index closes the old handle")
	assert.Equal(t, "Other", g.Name())
	assert.Equal(t, 2, g.Index())

	g.Close()
	assert.True(t, other.Closed)
	assert.Empty(t, g.Name())
	g.Close()
	assert.Nil(t, g.Layout())
}

func TestGamepadPullEdgeIdempotence(t *testing.T) {
	g, js := openPad(t, 0)
	var q Queue

	js.Buttons[0] = true
	for range 10 {
		g.Poll(nil, &q)
	}
	events := q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadA, ButtonDown))
	assert.Zero(t, countButton(events, GamepadA, ButtonUp))
	assert.Empty(t, analogEvents(events), "resting axes stay quiet")

	js.Buttons[0] = false
	for range 10 {
		g.Poll(nil, &q)
	}
	events = q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadA, ButtonUp))
	assert.Zero(t, countButton(events, GamepadA, ButtonDown))
}

func TestGamepadPushEdgeIdempotence(t *testing.T) {
	g, _ := openPad(t, 3)
	g.SetEventsEnabled(true)
	var q Queue

	down := platform.JoyButtonEvent{Which: 3, Button: 0, Down: true}
	assert.True(t, g.HandlePlatformEvent(down, nil, &q))
	assert.True(t, g.HandlePlatformEvent(down, nil, &q))
	for range 10 {
		g.Poll(nil, &q)
	}
	events := q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadA, ButtonDown))
	assert.True(t, g.State().Buttons.Has(GamepadA))

	assert.True(t, g.HandlePlatformEvent(platform.JoyButtonEvent{Which: 3, Button: 0}, nil, &q))
	g.Poll(nil, &q)
	assert.Equal(t, 1, countButton(q.Drain(), GamepadA, ButtonUp))

	assert.False(t, g.HandlePlatformEvent(platform.JoyButtonEvent{Which: 4, Button: 0, Down: true}, nil, &q), "other device")
	assert.False(t, g.HandlePlatformEvent(platform.KeyEvent{Code: 4, Down: true}, nil, &q))
	assert.Zero(t, q.Len())
}

func TestGamepadPullIgnoresPlatformEvents(t *testing.T) {
	g, _ := openPad(t, 0)
	var q Queue
	assert.False(t, g.HandlePlatformEvent(platform.JoyButtonEvent{Which: 0, Button: 0, Down: true}, nil, &q))
	assert.Zero(t, q.Len())
}

func TestGamepadLeftStickFullNegative(t *testing.T) {
	g, js := openPad(t, 0)
	var q Queue

	js.Axes[0] = math.MinInt16
	g.Poll(nil, &q)

	analogs := analogEvents(q.Drain())
	require.Len(t, analogs, 1)
	ev := analogs[0]
	assert.Equal(t, NativeAnalog(GamepadAnalogLeftStick), ev.Native)
	assert.InDelta(t, -1.0, ev.Value.X, 1e-9)
	assert.Zero(t, ev.Value.Y)
	assert.InDelta(t, 180.0, ev.Angle(), 1e-9)
	assert.Equal(t, ev.Value, ev.State.Analog(NativeAnalog(GamepadAnalogLeftStick)))
}

func TestGamepadAxisInversionAndTriggers(t *testing.T) {
	g, js := openPad(t, 0)
	var q Queue

	js.Axes[1] = math.MaxInt16 // stick pushed down
	js.Axes[5] = math.MaxInt16 // right trigger fully pressed
	st := g.Poll(nil, &q)

	assert.InDelta(t, -1.0, st.Analog(NativeAnalog(GamepadAnalogLeftStick)).Y, 1e-9)
	assert.InDelta(t, 1.0, st.Analog(NativeAnalog(GamepadAnalogRightTrigger)).X, 1e-9)
	assert.Zero(t, st.Analog(NativeAnalog(GamepadAnalogLeftTrigger)).X)
	assert.Len(t, analogEvents(q.Drain()), 2)

	g.Poll(nil, &q)
	assert.Zero(t, q.Len(), "unchanged analogs are not repeated")
}

func TestGamepadDeadZoneFromProfile(t *testing.T) {
	g, js := openPad(t, 0)
	p := NewProfile("pad", KindGamepad)
	p.DeadZones[NativeAnalog(GamepadAnalogLeftStick)] = DeadZone{Threshold: 0.5, Max: 1}
	var q Queue

	js.Axes[0] = 16000 // below 0.5
	g.Poll(p, &q)
	assert.Zero(t, q.Len())

	js.Axes[0] = 32767
	g.Poll(p, &q)
	require.Len(t, analogEvents(q.Drain()), 1)
}

func TestGamepadDPadHat(t *testing.T) {
	g, js := openPad(t, 0)
	var q Queue

	js.Hats[0] = platform.HatUp | platform.HatRight
	g.Poll(nil, &q)
	events := q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadDPadUp, ButtonDown))
	assert.Equal(t, 1, countButton(events, GamepadDPadRight, ButtonDown))
	analogs := analogEvents(events)
	require.Len(t, analogs, 1)
	assert.Equal(t, NativeAnalog(GamepadAnalogDPad), analogs[0].Native)
	assert.InDelta(t, math.Sqrt2/2, analogs[0].Value.X, 1e-12)
	assert.InDelta(t, math.Sqrt2/2, analogs[0].Value.Y, 1e-12)
	assert.InDelta(t, 45.0, analogs[0].Angle(), 1e-9)

	g.Poll(nil, &q)
	events = q.Drain()
	assert.Empty(t, buttonEvents(events))
	assert.Len(t, analogEvents(events), 1, "held hats report each poll")

	js.Hats[0] = 0
	g.Poll(nil, &q)
	events = q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadDPadUp, ButtonUp))
	analogs = analogEvents(events)
	require.Len(t, analogs, 1)
	assert.True(t, analogs[0].Value.IsZero())

	g.Poll(nil, &q)
	assert.Zero(t, q.Len())
}

func TestGamepadReleaseZeroesDPad(t *testing.T) {
	g, js := openPad(t, 0)
	var q Queue

	js.Hats[0] = platform.HatLeft
	g.Poll(nil, &q)
	q.Drain()

	g.release(&q)
	events := q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadDPadLeft, ButtonUp))
	analogs := analogEvents(events)
	require.Len(t, analogs, 1)
	assert.Equal(t, NativeAnalog(GamepadAnalogDPad), analogs[0].Native)
	assert.True(t, analogs[0].Value.IsZero())
	assert.True(t, g.State().Analogs[GamepadAnalogDPad].IsZero())

	g.release(&q)
	assert.Zero(t, q.Len())
}

func TestGamepadPushHat(t *testing.T) {
	g, _ := openPad(t, 0)
	g.SetEventsEnabled(true)
	var q Queue

	require.True(t, g.HandlePlatformEvent(platform.JoyHatEvent{Which: 0, Value: platform.HatLeft}, nil, &q))
	assert.Equal(t, 1, countButton(q.Drain(), GamepadDPadLeft, ButtonDown))

	g.Poll(nil, &q)
	analogs := analogEvents(q.Drain())
	require.Len(t, analogs, 1)
	assert.Equal(t, Vec2{X: -1}, analogs[0].Value)
}

func TestGamepadPushAxis(t *testing.T) {
	g, _ := openPad(t, 0)
	g.SetEventsEnabled(true)
	var q Queue

	require.True(t, g.HandlePlatformEvent(platform.JoyAxisEvent{Which: 0, Axis: 0, Value: 100}, nil, &q))
	assert.Zero(t, q.Len(), "inside the default dead zone")

	require.True(t, g.HandlePlatformEvent(platform.JoyAxisEvent{Which: 0, Axis: 2, Value: math.MaxInt16}, nil, &q))
	analogs := analogEvents(q.Drain())
	require.Len(t, analogs, 1)
	assert.Equal(t, NativeAnalog(GamepadAnalogRightStick), analogs[0].Native)
	assert.Equal(t, 1.0, analogs[0].Value.X)

	require.True(t, g.HandlePlatformEvent(platform.JoyAxisEvent{Which: 0, Axis: 9, Value: 5}, nil, &q), "unmapped axes are consumed")
	assert.Zero(t, q.Len())
}

func TestGamepadVirtualButton(t *testing.T) {
	g, js := openPad(t, 0)
	p := NewProfile("pad", KindGamepad)
	p.Virtual[NativeAnalog(GamepadAnalogRightTrigger)] = []VirtualButton{
		{Target: 3, Axes: MaskOf(AxisX), Compare: Greater, Threshold: 0.5},
	}
	var q Queue

	js.Axes[5] = math.MaxInt16
	for range 5 {
		g.Poll(p, &q)
	}
	var virtual []ButtonEvent
	for _, e := range buttonEvents(q.Drain()) {
		if e.Virtual {
			virtual = append(virtual, e)
		}
	}
	require.Len(t, virtual, 1)
	assert.Equal(t, ButtonDown, virtual[0].Action)
	assert.Equal(t, EngineButton(3), virtual[0].Button)
	assert.Equal(t, Unbound, virtual[0].Native)
	assert.Equal(t, NativeAnalog(GamepadAnalogRightTrigger), virtual[0].Source)

	js.Axes[5] = math.MinInt16
	g.Poll(p, &q)
	virtual = virtual[:0]
	for _, e := range buttonEvents(q.Drain()) {
		if e.Virtual {
			virtual = append(virtual, e)
		}
	}
	require.Len(t, virtual, 1)
	assert.Equal(t, ButtonUp, virtual[0].Action)
}

func TestGamepadProfileHats(t *testing.T) {
	g, js := openPad(t, 0)
	p := NewProfile("pad", KindGamepad)
	p.Hats = []HatDescriptor{{Name: "face", Up: GamepadY, Right: GamepadB, Down: GamepadA, Left: GamepadX}}
	p.Analogs[NativeAnalog(GamepadAnalogRuntime)] = 7
	var q Queue

	js.Buttons[3] = true // Y
	st := g.Poll(p, &q)
	analogs := analogEvents(q.Drain())
	require.Len(t, analogs, 1)
	assert.Equal(t, NativeAnalog(GamepadAnalogRuntime), analogs[0].Native)
	assert.Equal(t, EngineAnalog(7), analogs[0].Analog)
	assert.Equal(t, Vec2{Y: 1}, analogs[0].Value)
	assert.Equal(t, Vec2{Y: 1}, st.Analog(NativeAnalog(GamepadAnalogRuntime)))
}

func TestGamepadContinuous(t *testing.T) {
	g, js := openPad(t, 0)
	g.SetContinuous(true)
	var q Queue

	js.Buttons[1] = true
	for range 3 {
		g.Poll(nil, &q)
	}
	events := q.Drain()
	assert.Equal(t, 1, countButton(events, GamepadB, ButtonDown))
	assert.Equal(t, 3, countButton(events, GamepadB, ButtonHeld))
}

func TestGamepadMappedEngineButton(t *testing.T) {
	g, js := openPad(t, 0)
	p := NewProfile("pad", KindGamepad)
	p.Buttons[GamepadA] = 2
	var q Queue

	js.Buttons[0] = true
	js.Buttons[1] = true
	g.Poll(p, &q)
	for _, e := range buttonEvents(q.Drain()) {
		switch e.Native {
		case GamepadA:
			assert.Equal(t, EngineButton(2), e.Button)
		case GamepadB:
			assert.Equal(t, NoEngineButton, e.Button)
		}
	}
}

func TestGamepadClosedPollIsQuiet(t *testing.T) {
	g, js := openPad(t, 0)
	g.Close()
	js.Buttons[0] = true
	var q Queue
	g.Poll(nil, &q)
	assert.Zero(t, q.Len())
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, "playstation", LayoutFor(0x054C, 0x0CE6).Name)
	assert.Equal(t, "switch_pro", LayoutFor(0x057E, 0x2009).Name)
	assert.Equal(t, "generic", LayoutFor(0x1234, 0x5678).Name)

	b, ok := LayoutFor(0x054C, 0x0CE6).button(9)
	assert.True(t, ok)
	assert.Equal(t, GamepadLeftShoulder, b)
}
