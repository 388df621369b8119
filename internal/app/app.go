// Package app wires the screens into the root Bubble Tea program.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/screens/home"
	"github.com/abhisek/labquest/internal/screens/lesson"
	"github.com/abhisek/labquest/internal/store"
	"github.com/abhisek/labquest/internal/ui/layout"
)

// Options configures the program.
type Options struct {
	Catalog  *lessons.Catalog
	Progress store.ProgressRepo
	Events   store.EventRepo

	// Lesson is passed to every lesson screen.
	Lesson lesson.Deps

	// Updates delivers hot-reloaded lesson files. Nil disables reload.
	Updates <-chan lessons.Update

	// StartLesson opens a lesson directly, above the home screen.
	StartLesson string
	StartPhase  string

	Log *zap.Logger
}

// lessonUpdateMsg carries one watcher update into the program. A closed
// channel yields no message.
type lessonUpdateMsg struct {
	update lessons.Update
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	start  screen.Screen
	width  int
	height int
	log    *zap.Logger
}

func newAppModel(opts Options) (AppModel, error) {
	if opts.Catalog == nil {
		opts.Catalog = lessons.NewCatalog()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Lesson.Log == nil {
		opts.Lesson.Log = opts.Log
	}

	m := AppModel{
		router: router.New(home.New(opts.Catalog, opts.Progress, opts.Events, opts.Lesson)),
		opts:   opts,
		log:    opts.Log,
	}
	if opts.StartLesson != "" {
		l, ok := opts.Catalog.Get(opts.StartLesson)
		if !ok {
			return AppModel{}, fmt.Errorf("unknown lesson %q", opts.StartLesson)
		}
		m.start = lesson.New(l, opts.StartPhase, opts.Lesson)
	}
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init(), waitForUpdate(m.opts.Updates)}
	if m.start != nil {
		start := m.start
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return tea.Batch(cmds...)
}

func waitForUpdate(ch <-chan lessons.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return lessonUpdateMsg{update: u}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case lessonUpdateMsg:
		u := msg.update
		if u.Lesson != nil {
			m.opts.Catalog.Add(u.Lesson)
		} else {
			m.log.Warn("lesson reload failed", zap.String("path", u.Path), zap.Error(u.Err))
		}
		cmd := m.router.Update(router.BroadcastMsg{Msg: lesson.ReloadMsg{Path: u.Path, Lesson: u.Lesson, Err: u.Err}})
		return m, tea.Batch(cmd, waitForUpdate(m.opts.Updates))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, active screen and footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	f := layout.Frame{Hints: m.footerHints(active), Width: m.width, Height: m.height}
	if active != nil {
		f.Title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			f.Status = sp.Status()
		}
	}
	return f.Render(m.router.View(m.width, f.ContentHeight()))
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		return append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
