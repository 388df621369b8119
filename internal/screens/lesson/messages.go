package lesson

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/formula"
	"github.com/abhisek/labquest/internal/lessons"
)

// notePollInterval is how often a failed test checks for a coach note.
const notePollInterval = 250 * time.Millisecond

// simTickMsg advances the running simulation. Ticks from a superseded
// run carry a stale generation and are dropped.
type simTickMsg struct {
	gen int
}

// noteTickMsg polls the coach for a finished review note.
type noteTickMsg struct{}

// ReloadMsg delivers a re-parsed lesson file. Screens showing a lesson
// with the same ID swap in the new content.
type ReloadMsg struct {
	Path   string
	Lesson *lessons.Lesson
	Err    error
}

func simTick(gen int) tea.Cmd {
	return tea.Tick(formula.TickInterval, func(time.Time) tea.Msg {
		return simTickMsg{gen: gen}
	})
}

func noteTick() tea.Cmd {
	return tea.Tick(notePollInterval, func(time.Time) tea.Msg {
		return noteTickMsg{}
	})
}
