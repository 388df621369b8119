package events

// Notifier receives lesson events. Implementations must not block the
// caller for long; the controller invokes Notify on the UI goroutine.
type Notifier interface {
	Notify(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(Event) {}

// Func adapts a plain function to a Notifier.
type Func func(Event)

func (f Func) Notify(e Event) {
	if f != nil {
		f(e)
	}
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Recorder keeps every event it receives. Useful for tests and for
// replaying a session into the summary screen.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Notify(e Event) {
	r.Events = append(r.Events, e)
}

// OfType returns the recorded events with type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
