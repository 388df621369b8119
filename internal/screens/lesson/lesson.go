// Package lesson is the screen that walks a learner through one lesson's
// phases.
package lesson

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/coach"
	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/formula"
	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/screens/summary"
	"github.com/abhisek/labquest/internal/session"
	"github.com/abhisek/labquest/internal/ui/components"
	"github.com/abhisek/labquest/internal/ui/layout"
)

// Deps are the services a lesson run reports to. Every field is optional.
type Deps struct {
	// Notifier receives every lesson event.
	Notifier events.Notifier

	// Coach writes a review note after a failed test.
	Coach *coach.Service

	// Base holds the gating defaults a lesson's own gates overlay.
	Base session.Config

	// Style is the markdown style for lesson text.
	Style string

	// Clock replaces time.Now.
	Clock func() time.Time

	Log *zap.Logger
}

// Screen drives a session.Controller for one lesson.
type Screen struct {
	lesson *lessons.Lesson
	deps   Deps
	ctrl   *session.Controller
	model  formula.Model
	sim    simulation

	choice components.MultiChoice

	// transfer
	card int
	open map[int]bool

	// test
	question int
	quiz     []components.MultiChoice
	marks    []bool
	note     *coach.Note
	noteWait bool

	flash string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates a lesson screen starting at start, which is normally the
// phase saved by the host. An empty or unknown start begins at hook.
func New(l *lessons.Lesson, start string, deps Deps) *Screen {
	if deps.Base == (session.Config{}) {
		deps.Base = session.DefaultConfig()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Screen{deps: deps}
	s.load(l, start)
	return s
}

// load builds a fresh controller for l positioned at start.
func (s *Screen) load(l *lessons.Lesson, start string) {
	s.lesson = l
	s.model, _ = formula.Lookup(l.Model)
	s.ctrl = session.New(l.Content(), l.Config(s.deps.Base),
		session.WithNotifier(s.deps.Notifier),
		session.WithClock(s.deps.Clock),
		session.OnPhaseChange(s.enterPhase),
		session.OnAnswer(func(correct bool) { s.marks = append(s.marks, correct) }),
	)
	s.ctrl.Initialize(start)
	s.note, s.noteWait = nil, false
	s.enterPhase(s.ctrl.Phase())
}

// Controller exposes the phase controller.
func (s *Screen) Controller() *session.Controller {
	return s.ctrl
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return s.lesson.Title
}

// Status shows the phase position in the header.
func (s *Screen) Status() string {
	p := s.ctrl.Phase()
	return fmt.Sprintf("Phase %d/%d · %s", p.Index()+1, phase.Count, p.Label())
}

// enterPhase resets the per-phase view state. It runs after every
// controller transition and after load.
func (s *Screen) enterPhase(p phase.Phase) {
	s.flash = ""
	s.sim.stop()
	st := s.ctrl.State()

	switch p {
	case phase.Predict, phase.TwistPredict:
		pred := s.lesson.PredictionFor(p)
		texts := make([]string, len(pred.Choices))
		for i, c := range pred.Choices {
			texts[i] = c.Text
		}
		s.choice = components.NewMultiChoice(pred.Prompt, texts)
		picked := st.Prediction
		if p == phase.TwistPredict {
			picked = st.TwistPrediction
		}
		for i, c := range pred.Choices {
			if c.ID == picked {
				s.choice.Choose(i)
			}
		}

	case phase.Play, phase.TwistPlay:
		s.sim.reset(s.model, s.lesson.PlayFor(p))

	case phase.Transfer:
		s.card = 0
		if s.open == nil {
			s.open = make(map[int]bool)
		}

	case phase.Test:
		s.buildQuiz(st)
	}
}

func (s *Screen) buildQuiz(st session.State) {
	s.question = 0
	s.quiz = make([]components.MultiChoice, len(s.lesson.Test))
	for i, q := range s.lesson.Test {
		texts := make([]string, len(q.Options))
		for j, o := range q.Options {
			texts[j] = o.Text
		}
		mc := components.NewMultiChoice(q.Prompt, texts)
		if i < len(st.Answers) && st.Answers[i] != quiz.Unanswered {
			mc.Choose(st.Answers[i])
		}
		if st.Submitted {
			mc.Reveal(q.CorrectIndex())
		}
		s.quiz[i] = mc
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case simTickMsg:
		return s, s.sim.tick(msg.gen)

	case noteTickMsg:
		return s, s.pollNote()

	case ReloadMsg:
		return s, s.reload(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) reload(msg ReloadMsg) tea.Cmd {
	if msg.Err != nil {
		if msg.Path == s.lesson.Source {
			s.flash = "Reload failed: " + msg.Err.Error()
		}
		return nil
	}
	if msg.Lesson == nil || msg.Lesson.ID != s.lesson.ID {
		return nil
	}
	s.deps.Log.Info("lesson reloaded", zap.String("lesson", msg.Lesson.ID), zap.String("path", msg.Path))
	s.load(msg.Lesson, string(s.ctrl.Phase()))
	s.flash = "Reloaded " + msg.Path
	return nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch key {
	case "n":
		if !s.ctrl.GoNext() {
			s.flash = s.blockedReason()
		}
		return s, nil
	case "p":
		s.ctrl.GoBack()
		return s, nil
	case "ctrl+r":
		s.ctrl.Restart()
		s.open = nil
		s.marks = nil
		s.note, s.noteWait = nil, false
		s.enterPhase(s.ctrl.Phase())
		return s, nil
	}
	if target, ok := jumpKey(key); ok {
		if target != s.ctrl.Phase() && !s.ctrl.CanJumpTo(target) {
			s.flash = fmt.Sprintf("%s is locked", target.Label())
			return s, nil
		}
		s.ctrl.JumpTo(target)
		return s, nil
	}

	switch p := s.ctrl.Phase(); p {
	case phase.Predict, phase.TwistPredict:
		return s, s.updatePredict(msg, p)
	case phase.Play, phase.TwistPlay:
		return s, s.sim.handleKey(key)
	case phase.Transfer:
		return s, s.updateTransfer(key)
	case phase.Test:
		return s, s.updateTest(msg)
	case phase.Mastery:
		switch key {
		case "v":
			return s, s.showSummary()
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// jumpKey maps 1-9 and 0 to the ten phases.
func jumpKey(key string) (phase.Phase, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return "", false
	}
	i := int(key[0] - '1')
	if key[0] == '0' {
		i = 9
	}
	return phase.At(i)
}

func (s *Screen) blockedReason() string {
	cfg := s.ctrl.Config()
	st := s.ctrl.State()
	switch s.ctrl.Phase() {
	case phase.Predict, phase.TwistPredict:
		return "Make a prediction to continue"
	case phase.Transfer:
		return fmt.Sprintf("Explore %d of %d applications to continue", cfg.MinApplications, len(s.lesson.Applications))
	case phase.Test:
		if !st.Submitted {
			return "Answer every question and submit the test"
		}
		return fmt.Sprintf("Score %d or more to reach mastery", cfg.PassThreshold)
	case phase.Mastery:
		return "This is the last phase"
	}
	return ""
}

func (s *Screen) updatePredict(msg tea.KeyPressMsg, p phase.Phase) tea.Cmd {
	var chose bool
	s.choice, chose = s.choice.Update(msg)
	if !chose {
		return nil
	}
	pred := s.lesson.PredictionFor(p)
	id := pred.Choices[s.choice.Chosen].ID
	if p == phase.TwistPredict {
		s.ctrl.SelectTwistPrediction(id)
	} else {
		s.ctrl.SelectPrediction(id)
	}
	s.flash = ""
	return nil
}

func (s *Screen) updateTransfer(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if s.card > 0 {
			s.card--
		}
	case "down", "j":
		if s.card < len(s.lesson.Applications)-1 {
			s.card++
		}
	case "enter", "space":
		s.ctrl.MarkApplication(s.card)
		s.open[s.card] = !s.open[s.card]
	}
	return nil
}

func (s *Screen) updateTest(msg tea.KeyPressMsg) tea.Cmd {
	st := s.ctrl.State()
	key := msg.String()

	switch key {
	case "tab", "right":
		if s.question < len(s.quiz)-1 {
			s.question++
		}
		return nil
	case "shift+tab", "left":
		if s.question > 0 {
			s.question--
		}
		return nil
	case "v":
		if st.Submitted {
			return s.showSummary()
		}
	}

	if st.Submitted {
		if key == "r" && s.ctrl.CanRetry() {
			s.ctrl.RetryTest()
		}
		return nil
	}

	if key == "s" {
		return s.submit()
	}

	if len(s.quiz) == 0 {
		return nil
	}
	var chose bool
	s.quiz[s.question], chose = s.quiz[s.question].Update(msg)
	if chose && s.ctrl.AnswerQuestion(s.question, s.quiz[s.question].Chosen) {
		s.flash = ""
		if s.question < len(s.quiz)-1 {
			s.question++
		}
	}
	return nil
}

func (s *Screen) submit() tea.Cmd {
	if !s.ctrl.CanSubmit() {
		left := len(s.lesson.Test) - s.ctrl.State().Answers.Answered()
		s.flash = fmt.Sprintf("Answer all questions first (%d left)", left)
		return nil
	}
	s.marks = s.marks[:0]
	r, _ := s.ctrl.SubmitTest()
	for i := range s.quiz {
		s.quiz[i].Reveal(s.lesson.Test[i].CorrectIndex())
	}
	if r.Passed {
		return nil
	}

	s.note = nil
	if !s.deps.Coach.Enabled() {
		return nil
	}
	st := s.ctrl.State()
	s.deps.Coach.RequestNote(context.Background(), coach.InputFor(s.lesson, st.Answers, r, st.Attempts))
	s.noteWait = s.deps.Coach.Pending()
	if !s.noteWait {
		return nil
	}
	return noteTick()
}

func (s *Screen) pollNote() tea.Cmd {
	if !s.noteWait {
		return nil
	}
	if n, ok := s.deps.Coach.ConsumeNote(); ok {
		s.noteWait = false
		if n.LessonID == s.lesson.ID {
			s.note = n
		}
		return nil
	}
	if !s.deps.Coach.Pending() {
		s.noteWait = false
		return nil
	}
	return noteTick()
}

func (s *Screen) showSummary() tea.Cmd {
	st := s.ctrl.State()
	rep := summary.Report{
		Lesson:   s.lesson,
		Result:   st.Result,
		Answers:  st.Answers,
		Attempts: st.Attempts,
		Note:     s.note,
		Style:    s.deps.Style,
	}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: summary.New(rep)}
	}
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "n/p", Description: "Next/Back"}}
	switch s.ctrl.Phase() {
	case phase.Predict, phase.TwistPredict:
		hints = append(hints, layout.KeyHint{Key: "a-d", Description: "Predict"})
	case phase.Play, phase.TwistPlay:
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Parameter"},
			layout.KeyHint{Key: "←→", Description: "Adjust"},
			layout.KeyHint{Key: "r", Description: "Run"})
	case phase.Transfer:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Explore"})
	case phase.Test:
		if s.ctrl.State().Submitted {
			if s.ctrl.CanRetry() {
				hints = append(hints, layout.KeyHint{Key: "r", Description: "Retry"})
			}
			hints = append(hints, layout.KeyHint{Key: "v", Description: "Results"})
		} else {
			hints = append(hints,
				layout.KeyHint{Key: "Tab", Description: "Question"},
				layout.KeyHint{Key: "s", Description: "Submit"})
		}
	case phase.Mastery:
		hints = append(hints, layout.KeyHint{Key: "v", Description: "Results"})
	}
	return append(hints,
		layout.KeyHint{Key: "1-0", Description: "Jump"},
		layout.KeyHint{Key: "Esc", Description: "Lessons"})
}
