package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/components"
	"github.com/abhisek/labquest/internal/ui/layout"
	"github.com/abhisek/labquest/internal/ui/theme"
)

const bannerArt = `╦  ╔═╗╔╗ ╔═╗ ╦ ╦╔═╗╔═╗╔╦╗
║  ╠═╣╠╩╗║═╬╗║ ║║╣ ╚═╗ ║
╩═╝╩ ╩╚═╝╚═╝╚╚═╝╚═╝╚═╝ ╩ `

const bannerCompact = "L A B Q U E S T"

func renderBanner(cw int, compact bool) string {
	art := bannerArt
	if compact {
		art = bannerCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(theme.Title.Render(art))
}

// renderStats summarizes the learner's progress across the catalog.
func (h *HomeScreen) renderStats(cw int) string {
	total := h.catalog.Len()
	var mastered, started int
	for _, l := range h.catalog.All() {
		p, ok := h.saved[l.ID]
		switch {
		case !ok:
		case p.Passed:
			mastered++
		default:
			started++
		}
	}
	stats := fmt.Sprintf("%s   %s",
		theme.Label.Render(fmt.Sprintf("★ %d/%d MASTERED", mastered, total)),
		lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("▸ %d IN PROGRESS", started)),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Align(lipgloss.Center).
		Render(stats)
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 72)
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)

	sections := []string{renderBanner(cw, compact), h.renderStats(cw)}
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).
			Render("Progress unavailable: "+h.errMsg))
	}
	sections = append(sections, components.Panel("", strings.TrimRight(h.menu.View(), "\n"), cw, true))

	if sel := h.selectedSummary(); sel != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Render(theme.Hint.Render(sel)))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return components.Centered(content, width, height)
}

// selectedSummary is the one-line summary of the highlighted lesson.
func (h *HomeScreen) selectedSummary() string {
	all := h.catalog.All()
	if h.menu.Selected < 0 || h.menu.Selected >= len(all) {
		return ""
	}
	l := all[h.menu.Selected]
	if l.Subject == "" {
		return l.Summary
	}
	return l.Subject + ": " + l.Summary
}
