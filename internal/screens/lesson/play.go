package lesson

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/formula"
	"github.com/abhisek/labquest/internal/lessons"
)

// coarseSteps is how far shift+arrow moves a parameter.
const coarseSteps = 10

// simulation is the play-phase bench: adjustable parameters, live
// readings and an optional time-stepped run.
type simulation struct {
	model  formula.Model
	intro  string
	params []formula.Param
	values formula.Values
	cursor int

	stepper formula.Stepper
	running bool
	gen     int
}

// ready reports whether the lesson names a registered model.
func (m *simulation) ready() bool {
	return m.model.ID != ""
}

func (m *simulation) reset(model formula.Model, play lessons.Play) {
	m.stop()
	m.model = model
	m.intro = play.Intro
	m.cursor = 0
	m.params = nil
	m.values = nil
	if !m.ready() {
		return
	}
	m.values = model.Apply(play.Params)
	for _, key := range play.Focus {
		if p, ok := model.Param(key); ok {
			m.params = append(m.params, p)
		}
	}
	if len(m.params) == 0 {
		m.params = model.Params
	}
}

// stop abandons any running simulation. Ticks already scheduled are
// ignored because the generation moves on.
func (m *simulation) stop() {
	m.gen++
	m.running = false
	m.stepper = nil
}

func (m *simulation) start() tea.Cmd {
	if !m.ready() {
		return nil
	}
	m.stop()
	m.stepper = m.model.NewStepper(m.values)
	m.running = true
	return simTick(m.gen)
}

func (m *simulation) tick(gen int) tea.Cmd {
	if gen != m.gen || !m.running || m.stepper == nil {
		return nil
	}
	m.stepper.Step(formula.TickInterval)
	if m.stepper.Done() {
		m.running = false
		return nil
	}
	return simTick(gen)
}

func (m *simulation) nudge(steps int) {
	if m.cursor >= len(m.params) {
		return
	}
	p := m.params[m.cursor]
	next := p.Nudge(m.values[p.Key], steps)
	if next == m.values[p.Key] {
		return
	}
	m.values[p.Key] = next
	m.stop()
}

func (m *simulation) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.params)-1 {
			m.cursor++
		}
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	case "shift+left":
		m.nudge(-coarseSteps)
	case "shift+right":
		m.nudge(coarseSteps)
	case "r", "enter":
		return m.start()
	}
	return nil
}

// readings shows the running simulation when there is one and the
// closed-form result otherwise.
func (m *simulation) readings() []formula.Reading {
	if !m.ready() {
		return nil
	}
	if m.stepper != nil {
		return m.stepper.Readings()
	}
	return m.model.Evaluate(m.values)
}
