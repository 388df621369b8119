// Package history lists the recorded lesson event log.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/store"
	"github.com/abhisek/labquest/internal/ui/components"
	"github.com/abhisek/labquest/internal/ui/layout"
	"github.com/abhisek/labquest/internal/ui/theme"
)

// pageSize bounds how many events are loaded.
const pageSize = 200

type historyLoadedMsg struct {
	Events []store.StoredEvent
	Err    error
}

// HistoryScreen displays recent lesson events, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	events    []store.StoredEvent
	visible   []int
	filter    components.FilterInput
	selected  int
	expanded  map[int64]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeHandler = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		filter:    components.NewFilterInput("lesson, type or text", 40),
		expanded:  make(map[int64]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		evs, err := repo.ListLessonEvents(context.Background(), store.QueryOpts{Limit: pageSize, Newest: true})
		return historyLoadedMsg{Events: evs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// HandlesEscape keeps esc for closing the filter while it is focused.
func (s *HistoryScreen) HandlesEscape() bool {
	return s.filter.Focused()
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.filter.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "/", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		s.applyFilter()
		return s, nil

	case tea.KeyPressMsg:
		if s.filter.Focused() {
			switch msg.String() {
			case "esc", "enter":
				s.filter.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.filter, cmd = s.filter.Update(msg)
			s.applyFilter()
			return s, cmd
		}

		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "/":
			return s, s.filter.Focus()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.visible)-1 {
				s.selected++
			}
		case "enter":
			if ev, ok := s.current(); ok {
				s.expanded[ev.Sequence] = !s.expanded[ev.Sequence]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) applyFilter() {
	s.visible = s.visible[:0]
	for i, ev := range s.events {
		if s.filter.Matches(ev.LessonID, string(ev.Type), ev.Title) {
			s.visible = append(s.visible, i)
		}
	}
	if s.selected >= len(s.visible) {
		s.selected = max(0, len(s.visible)-1)
	}
}

func (s *HistoryScreen) current() (store.StoredEvent, bool) {
	if s.selected < 0 || s.selected >= len(s.visible) {
		return store.StoredEvent{}, false
	}
	return s.events[s.visible[s.selected]], true
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No lesson activity yet. Pick a lesson to begin!")
	}

	cw := components.ContentWidth(width)
	var lines []string
	if f := s.filter.View(); f != "" {
		lines = append(lines, f, "")
	}
	if len(s.visible) == 0 {
		lines = append(lines, theme.Hint.Render("No events match the filter."))
	}

	selectedLine := 0
	for row, idx := range s.visible {
		ev := s.events[idx]
		prefix := "  "
		style := theme.Unselected
		if row == s.selected {
			prefix = "> "
			style = theme.Selected
			selectedLine = len(lines)
		}
		line := fmt.Sprintf("%s%s  %-24s %s",
			prefix, ev.Timestamp.Local().Format("Jan 02 15:04"), truncate(ev.LessonID, 24), ev.Title)
		lines = append(lines, style.Render(truncate(line, cw)))

		if s.expanded[ev.Sequence] {
			for _, d := range detailLines(ev) {
				lines = append(lines, theme.Subtitle.Render("      "+truncate(d, cw-6)))
			}
		}
	}

	// Keep the selection on screen.
	start := 0
	if height > 0 && selectedLine >= height {
		start = selectedLine - height + 1
	}
	end := len(lines)
	if height > 0 && end-start > height {
		end = start + height
	}
	body := strings.Join(lines[start:end], "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}

// detailLines renders the event's details one field per line.
func detailLines(ev store.StoredEvent) []string {
	out := []string{fmt.Sprintf("#%d  %s", ev.Sequence, ev.Type)}
	if ev.Details == nil {
		return out
	}
	raw, err := json.Marshal(ev.Details)
	if err != nil {
		return out
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return append(out, string(raw))
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %v", k, fields[k]))
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
