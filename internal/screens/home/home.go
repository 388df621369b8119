// Package home is the lesson picker shown at startup.
package home

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/screens/history"
	"github.com/abhisek/labquest/internal/screens/lesson"
	"github.com/abhisek/labquest/internal/store"
	"github.com/abhisek/labquest/internal/ui/components"
)

type progressLoadedMsg struct {
	Progress map[string]store.Progress
	Err      error
}

// HomeScreen lists the catalog with each lesson's saved progress.
type HomeScreen struct {
	catalog  *lessons.Catalog
	progress store.ProgressRepo
	events   store.EventRepo
	deps     lesson.Deps

	saved  map[string]store.Progress
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen. The repositories may be nil, in which case
// progress is not shown and history is unavailable.
func New(catalog *lessons.Catalog, progress store.ProgressRepo, events store.EventRepo, deps lesson.Deps) *HomeScreen {
	h := &HomeScreen{
		catalog:  catalog,
		progress: progress,
		events:   events,
		deps:     deps,
		saved:    map[string]store.Progress{},
	}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.progress
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := repo.List(context.Background())
		if err != nil {
			return progressLoadedMsg{Err: err}
		}
		m := make(map[string]store.Progress, len(list))
		for _, p := range list {
			m[p.LessonID] = p
		}
		return progressLoadedMsg{Progress: m}
	}
}

// Resume reloads progress when a lesson screen is closed.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.Init()
}

func (h *HomeScreen) Title() string {
	return "Lessons"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.saved = msg.Progress
		h.rebuildMenu()
		return h, nil

	case lesson.ReloadMsg:
		// A new or retitled lesson file changes the catalog listing.
		if msg.Lesson != nil {
			h.rebuildMenu()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// rebuildMenu refreshes the items and keeps the cursor where it was.
func (h *HomeScreen) rebuildMenu() {
	sel := h.menu.Selected
	h.menu = components.NewMenu(h.menuItems())
	if sel < len(h.menu.Items) {
		h.menu.Selected = sel
	}
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	for _, l := range h.catalog.All() {
		l := l
		items = append(items, components.MenuItem{
			Label:  l.Title,
			Detail: badge(h.saved, l.ID),
			Action: func() tea.Cmd {
				start := resumePhase(h.saved, l.ID)
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: lesson.New(l, start, h.deps)}
				}
			},
		})
	}
	items = append(items,
		components.MenuItem{
			Label:    "History",
			Disabled: h.events == nil,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: history.New(h.events)}
				}
			},
		},
		components.MenuItem{
			Label:  "Quit",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)
	return items
}

// resumePhase is the phase a lesson reopens at. A mastered lesson starts
// over from the beginning.
func resumePhase(saved map[string]store.Progress, id string) string {
	p, ok := saved[id]
	if !ok || p.Phase == phase.Mastery {
		return ""
	}
	return string(p.Phase)
}

func badge(saved map[string]store.Progress, id string) string {
	p, ok := saved[id]
	switch {
	case !ok:
		return "new"
	case p.Passed:
		return fmt.Sprintf("★ mastered  best %d/%d", p.BestScore, p.Total)
	case p.Attempts > 0:
		return fmt.Sprintf("▸ %s  best %d/%d", p.Phase.Label(), p.BestScore, p.Total)
	default:
		return "▸ " + p.Phase.Label()
	}
}
