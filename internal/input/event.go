package input

// Event is an input event produced by a device. The concrete types are
// ConnectEvent, DisconnectEvent, ButtonEvent and AnalogEvent; consumers
// switch on the type.
type Event interface {
	isEvent()
}

// EventSink receives events as they are produced.
type EventSink interface {
	Enqueue(Event)
}

// ConnectEvent is sent when a device becomes available.
type ConnectEvent struct {
	Kind  DeviceKind
	Index int
	Name  string
}

// DisconnectEvent is sent when a device goes away.
type DisconnectEvent struct {
	Kind  DeviceKind
	Index int
}

// ButtonAction is the edge a ButtonEvent reports.
type ButtonAction int

const (
	ButtonDown ButtonAction = iota
	ButtonUp
	// ButtonHeld is only produced when continuous events are enabled.
	ButtonHeld
)

func (a ButtonAction) String() string {
	switch a {
	case ButtonDown:
		return "down"
	case ButtonUp:
		return "up"
	case ButtonHeld:
		return "held"
	default:
		return "unknown"
	}
}

// ButtonEvent reports a button edge. For virtual buttons Native is Unbound
// and Source names the analog the rule reads.
type ButtonEvent struct {
	Kind    DeviceKind
	Index   int
	State   DeviceState
	Action  ButtonAction
	Native  NativeButton
	Button  EngineButton
	Virtual bool
	Source  NativeAnalog
}

// AnalogEvent reports a new analog value.
type AnalogEvent struct {
	Kind   DeviceKind
	Index  int
	State  DeviceState
	Native NativeAnalog
	Analog EngineAnalog
	Value  Vec2
}

// Angle returns the direction of Value in degrees.
func (e AnalogEvent) Angle() float64 {
	return e.Value.Angle()
}

func (ConnectEvent) isEvent()    {}
func (DisconnectEvent) isEvent() {}
func (ButtonEvent) isEvent()     {}
func (AnalogEvent) isEvent()     {}

// Queue is an EventSink that buffers events until drained.
type Queue struct {
	events []Event
}

// Enqueue implements EventSink.
func (q *Queue) Enqueue(ev Event) {
	q.events = append(q.events, ev)
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Drain returns the buffered events and empties the queue.
func (q *Queue) Drain() []Event {
	out := q.events
	q.events = nil
	return out
}
