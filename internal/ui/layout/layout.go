// Package layout renders the frame around every screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactHeightThreshold = 30
)

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactHeight reports whether screens should drop decorative rows.
func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

// IsTooSmall reports whether the terminal is below the supported size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal too small\n\nlabquest needs %d x %d, this one is %d x %d",
			MinWidth, MinHeight, width, height))
}

// Frame is the chrome drawn around the active screen: a header with the
// app name, screen title and status, and a footer of key hints.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
	Width  int
	Height int
}

var bar = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// Header renders the top bar. The title is centred; the status sits at the
// right edge and wins over the title when space runs out.
func (f Frame) Header() string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  labquest")
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	inner := max(f.Width-4, 0)
	nw, tw, sw := lipgloss.Width(name), lipgloss.Width(title), lipgloss.Width(status)

	left := max((inner-tw)/2-nw, 1)
	right := max(inner-nw-left-tw-sw, 1)

	return bar.Width(f.Width).Render(name + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + status)
}

// Footer renders as many hints as fit on one line, in order.
func (f Frame) Footer() string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	const sep = "   "
	room := f.Width - 6
	line := " "
	for i, h := range f.Hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		if i > 0 {
			part = sep + part
		}
		if lipgloss.Width(line)+lipgloss.Width(part) > room {
			break
		}
		line += part
	}
	return bar.Width(f.Width).Render(line)
}

// ContentHeight is the number of rows left for the screen between header
// and footer.
func (f Frame) ContentHeight() int {
	return max(f.Height-lipgloss.Height(f.Header())-lipgloss.Height(f.Footer()), 0)
}

// Render stacks header, content and footer, padding content to fill the
// terminal.
func (f Frame) Render(content string) string {
	header, footer := f.Header(), f.Footer()
	body := lipgloss.NewStyle().
		Width(f.Width).
		Height(max(f.Height-lipgloss.Height(header)-lipgloss.Height(footer), 0)).
		Render(content)
	return header + "\n" + body + "\n" + footer
}
