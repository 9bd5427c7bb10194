package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteQueuesAndTracksKeys(t *testing.T) {
	r := NewRemote()
	r.Key(0x04, true)
	r.Key(0x04, true)
	r.Key(0x05, true)
	r.Key(0x04, false)

	state := r.KeyboardState()
	assert.False(t, state[0x04])
	assert.True(t, state[0x05])

	var got []Event
	r.PollEvents(func(ev Event) { got = append(got, ev) })
	require.Len(t, got, 4)
	assert.Equal(t, KeyEvent{Code: 0x04, Down: true}, got[0])
	assert.Equal(t, KeyEvent{Code: 0x04, Down: true, Repeat: true}, got[1])

	got = nil
	r.PollEvents(func(ev Event) { got = append(got, ev) })
	assert.Empty(t, got)
}

func TestRemoteMouse(t *testing.T) {
	r := NewRemote()
	r.MouseMove(10, 20)
	r.MouseMove(15, 18)
	r.MouseButton(1, true)
	r.MouseButton(9, true)
	r.MouseWheel(0, 1)
	r.MouseWheel(0, 2)

	s := r.MouseState()
	assert.Equal(t, uint8(0x02), s.Buttons)
	assert.Equal(t, 15.0, s.X)
	assert.Equal(t, 18.0, s.Y)
	assert.Equal(t, 3.0, s.WheelY)

	s = r.MouseState()
	assert.Zero(t, s.WheelY, "wheel accumulator is consumed by a read")

	var motions []MouseMotionEvent
	r.PollEvents(func(ev Event) {
		if m, ok := ev.(MouseMotionEvent); ok {
			motions = append(motions, m)
		}
	})
	require.Len(t, motions, 2)
	assert.Equal(t, MouseMotionEvent{X: 15, Y: 18, DX: 5, DY: -2}, motions[1])
}

func TestRemoteQueueMergesMovementWhenFull(t *testing.T) {
	r := NewRemote()
	dropped := 0
	r.OnDrop(func() { dropped++ })
	for i := 0; i < remoteQueueSize+3; i++ {
		r.MouseWheel(0, 1)
	}
	assert.Zero(t, dropped, "wheel steps fold into the last queued event")

	var wheel float64
	n := 0
	r.PollEvents(func(ev Event) {
		n++
		wheel += ev.(MouseWheelEvent).Y
	})
	assert.Equal(t, remoteQueueSize, n)
	assert.Equal(t, float64(remoteQueueSize+3), wheel)
}

func TestRemoteQueueKeepsTransitionsWhenFull(t *testing.T) {
	r := NewRemote()
	dropped := 0
	r.OnDrop(func() { dropped++ })

	r.Key(0x2C, true)
	for i := 0; i < 300; i++ {
		r.MouseWheel(0, 1)
	}
	r.Key(0x2C, false)
	r.MouseButton(0, true)
	r.MouseButton(0, false)
	assert.Equal(t, 3, dropped, "one wheel event evicted per transition")

	var keys []KeyEvent
	var buttons []MouseButtonEvent
	n := 0
	r.PollEvents(func(ev Event) {
		n++
		switch e := ev.(type) {
		case KeyEvent:
			keys = append(keys, e)
		case MouseButtonEvent:
			buttons = append(buttons, e)
		}
	})
	assert.Equal(t, remoteQueueSize, n)
	assert.Equal(t, []KeyEvent{{Code: 0x2C, Down: true}, {Code: 0x2C}}, keys)
	assert.Equal(t, []MouseButtonEvent{{Button: 0, Down: true}, {Button: 0}}, buttons)
}

func TestRemoteQueueGrowsOnlyForTransitions(t *testing.T) {
	r := NewRemote()
	for i := 0; i < remoteQueueSize+10; i++ {
		r.Key(uint8(i%4), i%8 < 4)
	}
	r.MouseMove(1, 1)

	n := 0
	r.PollEvents(func(ev Event) {
		n++
		_, isKey := ev.(KeyEvent)
		assert.True(t, isKey)
	})
	assert.Equal(t, remoteQueueSize+10, n, "no key transition is lost and motion is dropped")
}

func TestRemoteWheelNotAccumulatedInPushMode(t *testing.T) {
	r := NewRemote()
	r.MouseWheel(0, 5)
	r.SetPullMouse(false)
	assert.Zero(t, r.MouseState().WheelY, "switching to push clears the accumulator")

	for i := 0; i < 1000; i++ {
		r.MouseWheel(1, 1)
	}
	s := r.MouseState()
	assert.Zero(t, s.WheelX)
	assert.Zero(t, s.WheelY)
}
