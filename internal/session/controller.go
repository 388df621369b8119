// Package session sequences a learner through the lesson phases, gates
// forward progress, scores the knowledge test and reports every notable
// interaction as an event.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
)

// Controller owns the state of one lesson run. It is not safe for
// concurrent use; drive it from a single goroutine.
type Controller struct {
	content  Content
	cfg      Config
	notifier events.Notifier
	onPhase  func(phase.Phase)
	onAnswer func(correct bool)
	now      func() time.Time

	state    State
	runID    string
	lastMove time.Time
	moved    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the event sink. The default discards events.
func WithNotifier(n events.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithClock overrides the time source used for debouncing and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// OnPhaseChange registers a host callback invoked after each transition.
func OnPhaseChange(fn func(phase.Phase)) Option {
	return func(c *Controller) { c.onPhase = fn }
}

// OnAnswer registers a host callback invoked once per question when a
// test is graded.
func OnAnswer(fn func(correct bool)) Option {
	return func(c *Controller) { c.onAnswer = fn }
}

// New creates a controller positioned at the first phase.
func New(content Content, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		content:  content,
		cfg:      cfg.normalize(len(content.Questions), len(content.Applications)),
		notifier: events.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = newState(len(content.Questions))
	c.runID = uuid.NewString()
	return c
}

// Initialize resets the run and adopts external as the starting phase when
// it names a valid phase. Anything else starts at hook.
func (c *Controller) Initialize(external string) {
	c.state = newState(len(c.content.Questions))
	c.runID = uuid.NewString()
	c.moved = false
	if p, ok := phase.Parse(external); ok {
		c.adopt(p)
	}
}

// SyncExternalPhase adopts a host-supplied phase when it is valid and
// differs from the current one. Host updates bypass debouncing and are
// not echoed back as events.
func (c *Controller) SyncExternalPhase(external string) bool {
	p, ok := phase.Parse(external)
	if !ok || p == c.state.Phase {
		return false
	}
	c.adopt(p)
	return true
}

func (c *Controller) adopt(p phase.Phase) {
	c.state.Phase = p
	if i := p.Index(); i > c.state.Furthest {
		c.state.Furthest = i
	}
}

// Config returns the effective gating rules.
func (c *Controller) Config() Config { return c.cfg }

// Content returns the lesson content the controller gates.
func (c *Controller) Content() Content { return c.content }

// RunID identifies the current pass through the lesson.
func (c *Controller) RunID() string { return c.runID }

// Phase returns the current phase.
func (c *Controller) Phase() phase.Phase { return c.state.Phase }

// State returns a copy of the current run state.
func (c *Controller) State() State { return c.state.clone() }

// GoToPhase moves to target. Invalid targets, the current phase and calls
// inside the debounce window are ignored. Mastery is refused until the
// test has been passed.
func (c *Controller) GoToPhase(target phase.Phase) bool {
	return c.transition(target, false)
}

// GoNext advances one phase when the current gate is satisfied.
func (c *Controller) GoNext() bool {
	next, ok := c.state.Phase.Next()
	if !ok || !c.CanAdvance() {
		return false
	}
	return c.transition(next, false)
}

// GoBack returns one phase. It is a no-op at hook.
func (c *Controller) GoBack() bool {
	prev, ok := c.state.Phase.Prev()
	if !ok {
		return false
	}
	return c.transition(prev, false)
}

// CanJumpTo reports whether the navigation bar may jump to target.
func (c *Controller) CanJumpTo(target phase.Phase) bool {
	if !target.Valid() || target == c.state.Phase {
		return false
	}
	if target == phase.Mastery && !c.state.Passed() {
		return false
	}
	switch c.cfg.JumpPolicy {
	case JumpVisited:
		return c.state.Visited(target)
	case JumpBackward:
		return target.Before(c.state.Phase)
	default:
		return true
	}
}

// JumpTo performs a navigation-bar jump subject to the jump policy.
func (c *Controller) JumpTo(target phase.Phase) bool {
	if !c.CanJumpTo(target) {
		return false
	}
	return c.transition(target, false)
}

// CanAdvance evaluates the current phase's gate.
func (c *Controller) CanAdvance() bool {
	s := &c.state
	switch s.Phase {
	case phase.Predict:
		return s.Prediction != ""
	case phase.TwistPredict:
		return s.TwistPrediction != ""
	case phase.Transfer:
		return len(s.Applications) >= c.cfg.MinApplications
	case phase.Test:
		return s.Passed()
	case phase.Mastery:
		return false
	default:
		return true
	}
}

// CanGoBack reports whether GoBack would move.
func (c *Controller) CanGoBack() bool {
	_, ok := c.state.Phase.Prev()
	return ok
}

func (c *Controller) transition(target phase.Phase, force bool) bool {
	if !target.Valid() || target == c.state.Phase {
		return false
	}
	now := c.now()
	if !force && c.moved && c.cfg.Debounce > 0 && now.Sub(c.lastMove) < c.cfg.Debounce {
		return false
	}
	if target == phase.Mastery && !c.state.Passed() {
		return false
	}

	from := c.state.Phase
	c.adopt(target)
	c.lastMove = now
	c.moved = true

	c.emit(events.PhaseChange{From: from, To: target, Label: target.Label()}, now)
	if c.onPhase != nil {
		c.onPhase(target)
	}
	if target == phase.Mastery {
		c.emit(events.LessonCompleted{
			Score:    c.state.Result.Score,
			Total:    c.state.Result.Total,
			Attempts: c.state.Attempts,
		}, now)
	}
	return true
}

func (c *Controller) emit(d events.Details, at time.Time) {
	e := events.New(c.content.LessonID, d, at)
	e.RunID = c.runID
	c.notifier.Notify(e)
}

// SelectPrediction records the predict-phase choice.
func (c *Controller) SelectPrediction(choice string) bool {
	if c.state.Phase != phase.Predict || choice == "" {
		return false
	}
	c.state.Prediction = choice
	c.emit(events.PredictionMade{
		Stage:   events.StageMain,
		Choice:  choice,
		Correct: choice == c.content.PredictAnswer,
	}, c.now())
	return true
}

// SelectTwistPrediction records the twist_predict-phase choice.
func (c *Controller) SelectTwistPrediction(choice string) bool {
	if c.state.Phase != phase.TwistPredict || choice == "" {
		return false
	}
	c.state.TwistPrediction = choice
	c.emit(events.PredictionMade{
		Stage:   events.StageTwist,
		Choice:  choice,
		Correct: choice == c.content.TwistAnswer,
	}, c.now())
	return true
}

// PredictionCorrect reports whether a main prediction was made and whether
// it matched the expected answer.
func (c *Controller) PredictionCorrect() (made, correct bool) {
	p := c.state.Prediction
	return p != "", p != "" && p == c.content.PredictAnswer
}

// TwistPredictionCorrect is PredictionCorrect for the twist stage.
func (c *Controller) TwistPredictionCorrect() (made, correct bool) {
	p := c.state.TwistPrediction
	return p != "", p != "" && p == c.content.TwistAnswer
}

// MarkApplication marks application card i as explored. Repeat marks are
// ignored.
func (c *Controller) MarkApplication(i int) bool {
	if c.state.Phase != phase.Transfer || i < 0 || i >= len(c.content.Applications) {
		return false
	}
	if c.state.Applications[i] {
		return false
	}
	c.state.Applications[i] = true
	c.emit(events.ApplicationExplored{
		Index:    i,
		Name:     c.content.Applications[i],
		Explored: len(c.state.Applications),
		Required: c.cfg.MinApplications,
	}, c.now())
	return true
}

// AnswerQuestion selects option for question q during an open test attempt.
func (c *Controller) AnswerQuestion(q, option int) bool {
	if c.state.Phase != phase.Test || c.state.Submitted {
		return false
	}
	if q < 0 || q >= len(c.content.Questions) {
		return false
	}
	if option < 0 || option >= len(c.content.Questions[q].Options) {
		return false
	}
	c.state.Answers.Set(q, option)
	c.emit(events.AnswerSelected{Question: q, Option: option}, c.now())
	return true
}

// CanSubmit reports whether the current attempt may be graded: every
// question must have a selection.
func (c *Controller) CanSubmit() bool {
	return c.state.Phase == phase.Test && !c.state.Submitted && quiz.Complete(c.state.Answers)
}

// SubmitTest grades the current attempt.
func (c *Controller) SubmitTest() (quiz.Result, bool) {
	if !c.CanSubmit() {
		return quiz.Result{}, false
	}
	r := quiz.Grade(c.content.Questions, c.state.Answers, c.cfg.PassThreshold)
	c.state.Submitted = true
	c.state.Result = r
	c.state.Attempts++

	if c.onAnswer != nil {
		for i, q := range c.content.Questions {
			c.onAnswer(q.IsCorrect(c.state.Answers[i]))
		}
	}
	c.emit(events.TestSubmitted{
		Score:     r.Score,
		Total:     r.Total,
		Threshold: r.Threshold,
		Passed:    r.Passed,
		Missed:    r.Missed,
	}, c.now())
	return r, true
}

// CanRetry reports whether a failed attempt is waiting to be reset.
func (c *Controller) CanRetry() bool {
	return c.state.Phase == phase.Test && c.state.Submitted && !c.state.Result.Passed
}

// RetryTest clears a failed attempt and returns the learner to the
// configured earlier phase.
func (c *Controller) RetryTest() bool {
	if !c.CanRetry() {
		return false
	}
	c.state.Answers.Reset()
	c.state.Submitted = false
	c.state.Result = quiz.Result{}
	c.emit(events.TestRetried{Attempt: c.state.Attempts + 1, ReturnTo: c.cfg.RetryPhase}, c.now())
	c.transition(c.cfg.RetryPhase, true)
	return true
}

// Restart clears every transient field and returns to hook.
func (c *Controller) Restart() {
	from := c.state.Phase
	c.state = newState(len(c.content.Questions))
	c.state.Phase = from
	c.emit(events.LessonRestarted{From: from}, c.now())
	c.runID = uuid.NewString()
	if from != phase.First {
		c.transition(phase.First, true)
	}
}
