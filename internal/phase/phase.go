// Package phase defines the fixed, ordered sequence of lesson phases.
package phase

// Phase is one named step in the lesson sequence.
type Phase string

const (
	Hook         Phase = "hook"
	Predict      Phase = "predict"
	Play         Phase = "play"
	Review       Phase = "review"
	TwistPredict Phase = "twist_predict"
	TwistPlay    Phase = "twist_play"
	TwistReview  Phase = "twist_review"
	Transfer     Phase = "transfer"
	Test         Phase = "test"
	Mastery      Phase = "mastery"
)

// First and Last bound the sequence.
const (
	First = Hook
	Last  = Mastery
)

var order = [...]Phase{
	Hook, Predict, Play, Review,
	TwistPredict, TwistPlay, TwistReview,
	Transfer, Test, Mastery,
}

var labels = map[Phase]string{
	Hook:         "Hook",
	Predict:      "Predict",
	Play:         "Play",
	Review:       "Review",
	TwistPredict: "Twist Predict",
	TwistPlay:    "Twist Play",
	TwistReview:  "Twist Review",
	Transfer:     "Transfer",
	Test:         "Test",
	Mastery:      "Mastery",
}

var index = func() map[Phase]int {
	m := make(map[Phase]int, len(order))
	for i, p := range order {
		m[p] = i
	}
	return m
}()

// Count is the number of phases in a lesson.
const Count = len(order)

// All returns the phases in lesson order. The slice is a copy.
func All() []Phase {
	out := make([]Phase, len(order))
	copy(out, order[:])
	return out
}

// Parse converts a string into a Phase. Only exact members of the fixed set
// are accepted; padded or differently cased input reports false.
func Parse(s string) (Phase, bool) {
	p := Phase(s)
	if !p.Valid() {
		return "", false
	}
	return p, true
}

// At returns the phase at position i.
func At(i int) (Phase, bool) {
	if i < 0 || i >= len(order) {
		return "", false
	}
	return order[i], true
}

// Valid reports whether p is a member of the sequence.
func (p Phase) Valid() bool {
	_, ok := index[p]
	return ok
}

// Index returns the position of p in the sequence, or -1.
func (p Phase) Index() int {
	if i, ok := index[p]; ok {
		return i
	}
	return -1
}

// Label returns the human-readable name shown in navigation and events.
func (p Phase) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return string(p)
}

// Next returns the following phase. False at Mastery or for invalid input.
func (p Phase) Next() (Phase, bool) {
	i := p.Index()
	if i < 0 {
		return "", false
	}
	return At(i + 1)
}

// Prev returns the preceding phase. False at Hook or for invalid input.
func (p Phase) Prev() (Phase, bool) {
	i := p.Index()
	if i < 0 {
		return "", false
	}
	return At(i - 1)
}

// Before reports whether p comes strictly earlier than q.
func (p Phase) Before(q Phase) bool {
	return p.Index() >= 0 && q.Index() >= 0 && p.Index() < q.Index()
}

// IsPredict reports whether p asks the learner for a prediction.
func (p Phase) IsPredict() bool {
	return p == Predict || p == TwistPredict
}

// IsPlay reports whether p hosts an interactive simulation.
func (p Phase) IsPlay() bool {
	return p == Play || p == TwistPlay
}

func (p Phase) String() string {
	return string(p)
}
