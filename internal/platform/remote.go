package platform

import (
	"slices"
	"sync"
)

const remoteQueueSize = 256

// Remote is a keyboard and mouse fed from outside the frame loop (the
// monitor's websocket clients). It is a Pump for push mode and a
// KeyboardDriver/MouseDriver for pull mode. Safe for concurrent use.
//
// The event queue never loses key or button transitions. Once it is full,
// motion and wheel events merge into a queued event of the same type or
// evict the oldest queued one.
type Remote struct {
	mu        sync.Mutex
	keys      [NumKeys]bool
	mouse     MouseSnapshot
	pullMouse bool
	queue     []Event
	onDrop    func()
}

// NewRemote returns an empty Remote whose mouse is read by MouseState.
func NewRemote() *Remote {
	return &Remote{pullMouse: true}
}

// SetPullMouse says whether MouseState is read every frame. Only then does
// the wheel accumulate; push mode consumes wheel events instead.
func (r *Remote) SetPullMouse(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pullMouse = on
	if !on {
		r.mouse.WheelX, r.mouse.WheelY = 0, 0
	}
}

// OnDrop registers a callback invoked when a motion or wheel event is
// discarded because the queue is full.
func (r *Remote) OnDrop(f func()) {
	r.mu.Lock()
	r.onDrop = f
	r.mu.Unlock()
}

func (r *Remote) push(ev Event) {
	if len(r.queue) < remoteQueueSize {
		r.queue = append(r.queue, ev)
		return
	}
	if coalesce(&r.queue[len(r.queue)-1], ev) {
		return
	}
	if i := slices.IndexFunc(r.queue, isMovement); i >= 0 {
		r.queue = slices.Delete(r.queue, i, i+1)
		r.dropped()
	} else if isMovement(ev) {
		r.dropped()
		return
	}
	r.queue = append(r.queue, ev)
}

func (r *Remote) dropped() {
	if r.onDrop != nil {
		r.onDrop()
	}
}

func isMovement(ev Event) bool {
	switch ev.(type) {
	case MouseMotionEvent, MouseWheelEvent:
		return true
	}
	return false
}

// coalesce folds ev into last when both are motion or both are wheel.
func coalesce(last *Event, ev Event) bool {
	switch e := ev.(type) {
	case MouseMotionEvent:
		if l, ok := (*last).(MouseMotionEvent); ok {
			*last = MouseMotionEvent{X: e.X, Y: e.Y, DX: l.DX + e.DX, DY: l.DY + e.DY}
			return true
		}
	case MouseWheelEvent:
		if l, ok := (*last).(MouseWheelEvent); ok {
			*last = MouseWheelEvent{X: l.X + e.X, Y: l.Y + e.Y}
			return true
		}
	}
	return false
}

// Key records a key transition.
func (r *Remote) Key(code uint8, down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	repeat := down && r.keys[code]
	r.keys[code] = down
	r.push(KeyEvent{Code: code, Down: down, Repeat: repeat})
}

// MouseButton records a mouse button transition.
func (r *Remote) MouseButton(button int, down bool) {
	if button < 0 || button > 7 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if down {
		r.mouse.Buttons |= 1 << button
	} else {
		r.mouse.Buttons &^= 1 << button
	}
	r.push(MouseButtonEvent{Button: button, Down: down})
}

// MouseMove records an absolute pointer position.
func (r *Remote) MouseMove(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dx, dy := x-r.mouse.X, y-r.mouse.Y
	r.mouse.X, r.mouse.Y = x, y
	r.push(MouseMotionEvent{X: x, Y: y, DX: dx, DY: dy})
}

// MouseWheel records wheel movement.
func (r *Remote) MouseWheel(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pullMouse {
		r.mouse.WheelX += x
		r.mouse.WheelY += y
	}
	r.push(MouseWheelEvent{X: x, Y: y})
}

// PollEvents hands every queued event to fn and empties the queue.
func (r *Remote) PollEvents(fn func(Event)) {
	r.mu.Lock()
	pending := r.queue
	r.queue = nil
	r.mu.Unlock()

	for _, ev := range pending {
		fn(ev)
	}
}

// KeyboardState implements KeyboardDriver.
func (r *Remote) KeyboardState() [NumKeys]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys
}

// MouseState implements MouseDriver. The wheel accumulator is consumed.
func (r *Remote) MouseState() MouseSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.mouse
	r.mouse.WheelX = 0
	r.mouse.WheelY = 0
	return s
}
