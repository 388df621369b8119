package session

import (
	"maps"

	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
)

// Content is the part of a lesson the controller needs to gate progress.
type Content struct {
	// LessonID tags every emitted event.
	LessonID string

	// Questions is the knowledge test.
	Questions []quiz.Question

	// PredictAnswer and TwistAnswer are the choice IDs framed as correct
	// in the review phases.
	PredictAnswer string
	TwistAnswer   string

	// Applications names the real-world application cards in transfer.
	Applications []string
}

// State is the transient learner state for one lesson run.
type State struct {
	// Phase is the current phase.
	Phase phase.Phase

	// Furthest is the index of the furthest phase reached.
	Furthest int

	// Prediction is the choice ID selected in predict.
	Prediction string

	// TwistPrediction is the choice ID selected in twist_predict.
	TwistPrediction string

	// Applications is the set of explored application card indices.
	Applications map[int]bool

	// Answers holds the selected option per test question.
	Answers quiz.Answers

	// Submitted is true once the current attempt has been graded.
	Submitted bool

	// Result is the grade of the last submission.
	Result quiz.Result

	// Attempts counts graded submissions in this run.
	Attempts int
}

func newState(questions int) State {
	return State{
		Phase:        phase.First,
		Applications: make(map[int]bool),
		Answers:      quiz.NewAnswers(questions),
	}
}

// clone returns a deep copy safe to hand to callers.
func (s State) clone() State {
	out := s
	out.Applications = maps.Clone(s.Applications)
	if out.Applications == nil {
		out.Applications = make(map[int]bool)
	}
	out.Answers = append(quiz.Answers(nil), s.Answers...)
	out.Result.Missed = append([]int(nil), s.Result.Missed...)
	return out
}

// Visited reports whether p has been reached in this run.
func (s State) Visited(p phase.Phase) bool {
	i := p.Index()
	return i >= 0 && i <= s.Furthest
}

// Passed reports whether the latest submission met the threshold.
func (s State) Passed() bool {
	return s.Submitted && s.Result.Passed
}
