package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked panels
// so that their borders line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 96 {
		w = 96
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Panel wraps content in a rounded-border card at content width cw. A
// non-empty title is drawn as the first line.
func Panel(title, content string, cw int, active bool) string {
	style := theme.Card
	if active {
		style = theme.ActiveCard
	}
	if title != "" {
		content = theme.Label.Render(title) + "\n" + content
	}
	return style.Width(cw).Render(content)
}

// Centered places content in the middle of a width x height area.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
