package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

// Button is a styled action label. Disabled buttons render dimmed and
// carry the reason they are unavailable.
type Button struct {
	Label  string
	Key    string
	Active bool
	Reason string
}

// NewButton creates a new button.
func NewButton(key, label string, active bool) Button {
	return Button{Key: key, Label: label, Active: active}
}

// Disable marks the button unavailable with a reason shown beside it.
func (b Button) Disable(reason string) Button {
	b.Active = false
	b.Reason = reason
	return b
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label = "[" + b.Key + "] " + label
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	out := theme.ButtonInactive.Render(label)
	if b.Reason != "" {
		out = lipgloss.JoinHorizontal(lipgloss.Center, out, "  "+theme.Hint.Render(b.Reason))
	}
	return out
}

// Buttons lays out a row of buttons.
func Buttons(bs ...Button) string {
	views := make([]string, 0, 2*len(bs))
	for i, b := range bs {
		if i > 0 {
			views = append(views, "  ")
		}
		views = append(views, b.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, views...)
}
