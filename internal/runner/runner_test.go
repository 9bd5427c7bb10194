package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soar/padmux/internal/config"
	"github.com/soar/padmux/internal/input"
	"github.com/soar/padmux/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const space = 0x2C

func keysDocument() config.Document {
	return config.Document{
		Profiles: []config.ProfileNode{{
			Name:    "keys",
			Kind:    "keyboard",
			Buttons: map[string]string{"space": "jump"},
		}},
		Keyboards: []config.BindingNode{{Device: input.AnyDevice, Profile: "keys"}},
		Players:   []config.PlayerNode{{Device: "kb", Index: 1}},
	}
}

func newRunner(t *testing.T, push bool, opts Options) (*Runner, *platform.Remote) {
	t.Helper()
	set, a, err := input.LoadProfiles(keysDocument(), input.DefaultContext())
	require.NoError(t, err)

	remote := platform.NewRemote()
	q := &input.Queue{}
	h := input.NewHandler(input.Options{
		Keyboard:     remote,
		Mouse:        remote,
		KeyboardName: "kb",
		MouseName:    "mouse",
		PushKeyboard: push,
		PushMouse:    push,
		Profiles:     set,
		Assignments:  a,
	}, q)
	opts.Pumps = append(opts.Pumps, remote)
	return New(h, q, opts), remote
}

func buttons(f Frame) []input.ButtonEvent {
	var out []input.ButtonEvent
	for _, r := range f.Events {
		if b, ok := r.Event.(input.ButtonEvent); ok {
			out = append(out, b)
		}
	}
	return out
}

func TestStepRoutesByPlayer(t *testing.T) {
	r, remote := newRunner(t, true, Options{SnapshotEvery: 2})
	remote.Key(space, true)
	r.Step()

	require.Len(t, r.Frames(), 1)
	f := <-r.Frames()
	assert.Equal(t, uint64(1), f.Seq)
	require.NotNil(t, f.Snapshot)

	require.Len(t, f.Events, 3)
	assert.Equal(t, Routed{Player: 1, Event: input.ConnectEvent{Kind: input.KindKeyboard, Index: 0, Name: "kb"}}, f.Events[0])
	assert.Equal(t, Routed{Player: 0, Event: input.ConnectEvent{Kind: input.KindMouse, Index: 0, Name: "mouse"}}, f.Events[1])
	assert.Equal(t, 1, f.Events[2].Player)
	down := buttons(f)
	require.Len(t, down, 1)
	assert.Equal(t, input.ButtonDown, down[0].Action)
	assert.Equal(t, "jump", input.DefaultContext().ButtonName(down[0].Button))

	r.Step()
	assert.Empty(t, r.Frames(), "quiet frames without a snapshot are not published")

	r.Step()
	require.Len(t, r.Frames(), 1)
	f = <-r.Frames()
	assert.Empty(t, f.Events)
	require.NotNil(t, f.Snapshot)
	assert.True(t, f.Snapshot.Keyboard.Pressed(space))
}

func TestPublishDropsWhenFull(t *testing.T) {
	r, _ := newRunner(t, false, Options{Buffer: 1, SnapshotEvery: 1})
	for range 3 {
		r.Step()
	}
	assert.Len(t, r.Frames(), 1)
	assert.Equal(t, uint64(2), r.Dropped())
}

func TestReloadKeepsLatest(t *testing.T) {
	r, _ := newRunner(t, false, Options{})
	first := Reload{Profiles: input.NewProfileSet()}
	second := Reload{Profiles: input.NewProfileSet(), Assignments: input.Assignments{Players: map[string]int{"kb": 3}}}
	r.Reload(first)
	r.Reload(second)

	require.Len(t, r.reloads, 1)
	got := <-r.reloads
	assert.Same(t, second.Profiles, got.Profiles)
	assert.Equal(t, 3, got.Assignments.Players["kb"])
}

func collect(ctx context.Context, frames <-chan Frame) <-chan []Frame {
	out := make(chan []Frame, 1)
	go func() {
		var all []Frame
		for {
			select {
			case f, ok := <-frames:
				if !ok {
					out <- all
					return
				}
				all = append(all, f)
			case <-ctx.Done():
				out <- all
				return
			}
		}
	}()
	return out
}

func TestRunReleasesOnStop(t *testing.T) {
	var started, stopped bool
	r, remote := newRunner(t, false, Options{
		Interval: time.Millisecond,
		Start:    func() error { started = true; return nil },
		Stop:     func() { stopped = true },
	})
	remote.Key(space, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	timeout, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	frames := collect(timeout, r.Frames())

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.True(t, started)
	assert.True(t, stopped)

	var actions []input.ButtonAction
	for _, f := range <-frames {
		for _, b := range buttons(f) {
			actions = append(actions, b.Action)
		}
	}
	assert.Equal(t, []input.ButtonAction{input.ButtonDown, input.ButtonUp}, actions)
}

func TestRunStartError(t *testing.T) {
	boom := errors.New("no sdl")
	r, _ := newRunner(t, false, Options{Start: func() error { return boom }})
	assert.ErrorIs(t, r.Run(context.Background()), boom)
	_, ok := <-r.Frames()
	assert.False(t, ok, "frames are closed when Run returns")
}

func TestRunAppliesReload(t *testing.T) {
	r, remote := newRunner(t, true, Options{Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	r.Reload(Reload{Profiles: input.NewProfileSet()})

	down := false
	require.Eventually(t, func() bool {
		down = !down
		remote.Key(space, down)
		for {
			select {
			case f := <-r.Frames():
				for _, b := range buttons(f) {
					if b.Button == input.NoEngineButton {
						return true
					}
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 5*time.Millisecond)
}
