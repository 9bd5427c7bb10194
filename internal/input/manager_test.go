package input

import (
	"testing"

	"github.com/soar/padmux/internal/platform"
	"github.com/soar/padmux/internal/platform/platformtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoProfiles() *ProfileSet {
	set := NewProfileSet()
	xbox := NewProfile("xbox", KindGamepad)
	xbox.Buttons[GamepadA] = 1
	set.Add(xbox)
	set.Add(NewProfile("generic", KindGamepad))
	set.Add(NewProfile("xbox", KindMouse))
	return set
}

func TestManagerConnectDisconnect(t *testing.T) {
	op := platformtest.NewOpener()
	js := newXboxStick("Xbox Pad")
	op.Plug(2, js)
	m := NewGamepadManager(op, twoProfiles(), map[string]string{"Xbox Pad": "xbox"}, nil)
	var q Queue

	m.OnDeviceConnected(2, &q)
	m.OnDeviceConnected(2, &q)
	events := q.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ConnectEvent{Kind: KindGamepad, Index: 2, Name: "Xbox Pad"}, events[0])
	assert.Equal(t, "xbox", m.Profile(2).Name)

	js.Buttons[0] = true
	m.PollAll(&q)
	events = q.Drain()
	require.Equal(t, 1, countButton(events, GamepadA, ButtonDown))
	assert.Equal(t, EngineButton(1), buttonEvents(events)[0].Button)

	m.OnDeviceDisconnected(2, &q)
	events = q.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, 1, countButton(events, GamepadA, ButtonUp), "held buttons are released")
	assert.Equal(t, DisconnectEvent{Kind: KindGamepad, Index: 2}, events[1])
	assert.True(t, js.Closed)

	m.OnDeviceDisconnected(2, &q)
	assert.Zero(t, q.Len())
	m.PollAll(&q)
	assert.Zero(t, q.Len(), "closed slots are skipped")

	m.OnDeviceConnected(2, &q)
	assert.Len(t, q.Drain(), 1)
	assert.Same(t, m.Gamepad(2), m.lookup(2), "slot is kept across reconnects")
	assert.Len(t, m.order, 1)
}

func TestManagerOpenFailureIsSilent(t *testing.T) {
	m := NewGamepadManager(platformtest.NewOpener(), NewProfileSet(), nil, nil)
	var q Queue
	m.OnDeviceConnected(4, &q)
	assert.Zero(t, q.Len())
	pad := m.Gamepad(4)
	require.NotNil(t, pad)
	assert.False(t, pad.IsOpen())
	assert.Nil(t, m.Gamepad(-1))
}

func TestManagerProfileResolution(t *testing.T) {
	op := platformtest.NewOpener()
	op.Plug(0, newXboxStick("Xbox Pad"))
	op.Plug(1, newXboxStick("xbox pad"))
	op.Plug(2, newXboxStick("Other"))
	set := twoProfiles()

	m := NewGamepadManager(op, set, map[string]string{"Xbox Pad": "xbox"}, nil)
	m.Gamepad(0)
	m.Gamepad(1)
	assert.Equal(t, "xbox", m.Profile(0).Name)
	assert.Nil(t, m.Profile(1), "names match exactly")

	m = NewGamepadManager(op, set, map[string]string{"Xbox Pad": "xbox", AnyDevice: "generic"}, nil)
	m.Gamepad(0)
	m.Gamepad(2)
	assert.Equal(t, "xbox", m.Profile(0).Name)
	assert.Equal(t, "generic", m.Profile(2).Name)

	require.NoError(t, m.Assign(2, "xbox"))
	assert.Equal(t, "xbox", m.Profile(2).Name)
	assert.ErrorIs(t, m.Assign(2, "missing"), ErrUnknownProfile)

	m.Reload(NewProfileSet(), nil)
	assert.Nil(t, m.Profile(0))
	assert.Nil(t, m.Profile(2))
}

func TestManagerPollOrder(t *testing.T) {
	op := platformtest.NewOpener()
	first, second := newXboxStick("A"), newXboxStick("B")
	op.Plug(5, first)
	op.Plug(1, second)
	m := NewGamepadManager(op, NewProfileSet(), nil, nil)
	var q Queue
	m.OnDeviceConnected(5, &q)
	m.OnDeviceConnected(1, &q)
	q.Drain()

	first.Buttons[2] = true
	second.Buttons[2] = true
	m.PollAll(&q)
	events := buttonEvents(q.Drain())
	require.Len(t, events, 2)
	assert.Equal(t, 5, events[0].Index)
	assert.Equal(t, 1, events[1].Index)
}

func TestManagerDispatch(t *testing.T) {
	op := platformtest.NewOpener()
	op.Plug(0, newXboxStick("Pad"))
	m := NewGamepadManager(op, NewProfileSet(), nil, nil)
	m.SetEventsEnabled(true)
	var q Queue

	assert.True(t, m.Dispatch(platform.JoyDeviceEvent{Which: 0, Added: true}, &q))
	assert.True(t, m.Dispatch(platform.JoyButtonEvent{Which: 0, Button: 3, Down: true}, &q))
	assert.False(t, m.Dispatch(platform.JoyButtonEvent{Which: 6, Button: 3, Down: true}, &q), "unknown device")
	assert.False(t, m.Dispatch(platform.KeyEvent{Code: 4}, &q))
	assert.True(t, m.Dispatch(platform.JoyDeviceEvent{Which: 0}, &q))

	events := q.Drain()
	require.Len(t, events, 4)
	assert.IsType(t, ConnectEvent{}, events[0])
	assert.Equal(t, 1, countButton(events, GamepadY, ButtonDown))
	assert.Equal(t, 1, countButton(events, GamepadY, ButtonUp))
	assert.IsType(t, DisconnectEvent{}, events[3])
}
