package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

// FilterInput wraps bubbles/textinput as an inline filter that is edited
// only while focused.
type FilterInput struct {
	Model textinput.Model
}

// NewFilterInput creates an unfocused filter.
func NewFilterInput(placeholder string, maxLen int) FilterInput {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = placeholder
	if maxLen > 0 {
		ti.CharLimit = maxLen
	}
	return FilterInput{Model: ti}
}

// Focus starts editing.
func (f *FilterInput) Focus() tea.Cmd {
	return f.Model.Focus()
}

// Blur stops editing and keeps the value.
func (f *FilterInput) Blur() {
	f.Model.Blur()
}

// Focused reports whether keys go to the filter.
func (f FilterInput) Focused() bool {
	return f.Model.Focused()
}

// Update forwards messages while focused.
func (f FilterInput) Update(msg tea.Msg) (FilterInput, tea.Cmd) {
	if !f.Model.Focused() {
		return f, nil
	}
	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	return f, cmd
}

// View renders the filter, or nothing when it is empty and unfocused.
func (f FilterInput) View() string {
	if !f.Model.Focused() && f.Value() == "" {
		return ""
	}
	view := f.Model.View()
	if !f.Model.Focused() {
		view = lipgloss.NewStyle().Foreground(theme.TextDim).Render("/ " + f.Value())
	}
	return view
}

// Value returns the trimmed, lower-cased filter text.
func (f FilterInput) Value() string {
	return strings.ToLower(strings.TrimSpace(f.Model.Value()))
}

// Matches reports whether any of fields contains the filter text.
func (f FilterInput) Matches(fields ...string) bool {
	q := f.Value()
	if q == "" {
		return true
	}
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
