package drag

// EventKind labels one gesture event.
type EventKind int

const (
	EventStart EventKind = iota
	EventMove
	EventEnd
	EventCancel
)

// Event is one platform-independent gesture event. Start carries the
// subject being picked up; Move and End carry the current pointer.
type Event struct {
	Kind    EventKind
	Subject Subject
	Pointer Point
}

// Source is anything that turns platform input into gesture events: mouse
// motion, keyboard navigation, or a test script. Implementations feed
// events to a Sink in the order the user produced them.
type Source interface {
	// Attach registers the sink receiving this source's events.
	Attach(Sink)
}

// Sink consumes gesture events.
type Sink interface {
	HandleGesture(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// HandleGesture handles handle gesture.
func (f SinkFunc) HandleGesture(ev Event) {
	f(ev)
}
