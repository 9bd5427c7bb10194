// Package runner owns the frame loop. The input handler is not safe for
// concurrent use, so everything that touches it happens on the loop
// goroutine, which is pinned to its OS thread for the joystick layer.
package runner

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/soar/padmux/internal/input"
	"github.com/soar/padmux/internal/platform"
)

const (
	DefaultBuffer        = 64
	DefaultSnapshotEvery = 60
)

// Routed is an event tagged with the player of the device that produced it.
// Player 0 means no player is bound.
type Routed struct {
	Player int
	Event  input.Event
}

// Frame is what one loop iteration produced. Frames with neither events nor
// a snapshot are not published.
type Frame struct {
	Seq      uint64
	Events   []Routed
	Snapshot *input.Snapshot
}

// Reload is a new profile set to apply between frames.
type Reload struct {
	Profiles    *input.ProfileSet
	Assignments input.Assignments
}

// Options configures a Runner.
type Options struct {
	Interval time.Duration
	// Pumps are drained in order at the start of every frame.
	Pumps []platform.Pump
	// Buffer is the capacity of the frame channel.
	Buffer int
	// SnapshotEvery attaches a snapshot to every n-th frame.
	SnapshotEvery int

	// Start runs on the loop thread before the first frame and Stop after
	// the last one.
	Start func() error
	Stop  func()

	Logger *slog.Logger
}

// Runner steps the handler at a fixed rate.
type Runner struct {
	h    *input.Handler
	q    *input.Queue
	opts Options
	log  *slog.Logger

	frames  chan Frame
	reloads chan Reload
	seq     uint64
	dropped atomic.Uint64
}

// New returns a runner for h, which must emit into q.
func New(h *input.Handler, q *input.Queue, opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Second / 60
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = DefaultSnapshotEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		h:       h,
		q:       q,
		opts:    opts,
		log:     logger.With("component", "runner"),
		frames:  make(chan Frame, opts.Buffer),
		reloads: make(chan Reload, 1),
	}
}

// Frames returns the channel frames are published on. It is closed when Run
// returns.
func (r *Runner) Frames() <-chan Frame {
	return r.frames
}

// Dropped returns how many frames were discarded because the channel was
// full.
func (r *Runner) Dropped() uint64 {
	return r.dropped.Load()
}

// Reload queues a profile swap. Only the latest pending request is kept.
// Safe to call from any goroutine.
func (r *Runner) Reload(rl Reload) {
	for {
		select {
		case r.reloads <- rl:
			return
		default:
		}
		select {
		case <-r.reloads:
		default:
		}
	}
}

// Run drives frames until ctx is cancelled. On the way out every held
// button is released, so consumers see matching up events, and the
// handler is closed.
func (r *Runner) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.frames)

	if r.opts.Start != nil {
		if err := r.opts.Start(); err != nil {
			return err
		}
	}
	if r.opts.Stop != nil {
		defer r.opts.Stop()
	}

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	r.log.Info("frame loop started", "interval", r.opts.Interval)

	// Devices present at startup.
	r.Step()

	for {
		select {
		case <-ctx.Done():
			r.h.Release()
			r.publish(true)
			r.h.Close()
			r.log.Info("frame loop stopped", "frames", r.seq, "dropped", r.Dropped())
			return nil
		case rl := <-r.reloads:
			r.h.Reload(rl.Profiles, rl.Assignments)
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step runs one frame: platform events, then the poll, then publishing.
func (r *Runner) Step() {
	for _, p := range r.opts.Pumps {
		p.PollEvents(func(ev platform.Event) {
			r.h.HandlePlatformEvent(ev)
		})
	}
	r.h.Poll()
	r.publish(r.seq%uint64(r.opts.SnapshotEvery) == 0)
}

func (r *Runner) publish(snapshot bool) {
	r.seq++
	events := r.q.Drain()
	if len(events) == 0 && !snapshot {
		return
	}
	f := Frame{Seq: r.seq, Events: make([]Routed, 0, len(events))}
	for _, ev := range events {
		f.Events = append(f.Events, Routed{Player: r.player(ev), Event: ev})
	}
	if snapshot {
		s := r.h.Snapshot()
		f.Snapshot = &s
	}
	select {
	case r.frames <- f:
	default:
		if r.dropped.Add(1)%100 == 1 {
			r.log.Warn("frame consumer is behind, dropping frames", "dropped", r.dropped.Load())
		}
	}
}

func (r *Runner) player(ev input.Event) int {
	switch e := ev.(type) {
	case input.ButtonEvent:
		return r.h.Player(e.Kind, e.Index)
	case input.AnalogEvent:
		return r.h.Player(e.Kind, e.Index)
	case input.ConnectEvent:
		return r.h.Player(e.Kind, e.Index)
	}
	return 0
}
