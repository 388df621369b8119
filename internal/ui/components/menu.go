package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

// MenuItem is one row of a Menu. Detail is a dim note shown after the
// label, such as a lesson's progress badge.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with a cursor that never rests on a disabled item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu places the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(0, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move walks from start in steps of dir and stops on the first enabled
// item. The cursor is unchanged when there is none.
func (m *Menu) move(start, dir int) {
	for i := start; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Current returns the item under the cursor.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// Update moves the cursor and runs the selected item's action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.move(m.Selected-1, -1)
	case "down", "j":
		m.move(m.Selected+1, 1)
	case "home", "g":
		m.move(0, 1)
	case "end", "G":
		m.move(len(m.Items)-1, -1)
	case "enter":
		if item, ok := m.Current(); ok && !item.Disabled && item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

// View renders one line per item.
func (m Menu) View() string {
	detail := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = theme.Disabled.Render("    " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		if item.Detail != "" {
			line += "  " + detail.Render(item.Detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n"
}
