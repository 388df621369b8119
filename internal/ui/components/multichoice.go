package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/ui/theme"
)

// NoChoice marks a MultiChoice with nothing chosen.
const NoChoice = -1

// MultiChoice is a multiple-choice selector. Choosing an option records it
// but does not lock the component; Lock freezes it and Reveal marks the
// correct option.
type MultiChoice struct {
	Prompt  string
	Options []string
	Cursor  int
	Chosen  int
	Locked  bool
	Correct int
}

// NewMultiChoice creates a selector with nothing chosen.
func NewMultiChoice(prompt string, options []string) MultiChoice {
	return MultiChoice{
		Prompt:  prompt,
		Options: options,
		Chosen:  NoChoice,
		Correct: NoChoice,
	}
}

// Update moves the cursor and records a choice. The second return value
// is true when this message chose an option.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.Locked {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		if len(m.Options) > 0 {
			m.Chosen = m.Cursor
			return m, true
		}
	default:
		if i, ok := letterIndex(key); ok && i < len(m.Options) {
			m.Cursor = i
			m.Chosen = i
			return m, true
		}
	}
	return m, false
}

// Choose selects option i directly.
func (m *MultiChoice) Choose(i int) {
	if i >= 0 && i < len(m.Options) {
		m.Cursor = i
		m.Chosen = i
	}
}

// Reveal locks the selector and highlights the correct option.
func (m *MultiChoice) Reveal(correct int) {
	m.Locked = true
	m.Correct = correct
}

// View renders the prompt and options.
func (m MultiChoice) View() string {
	var b strings.Builder
	if m.Prompt != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Prompt))
		b.WriteString("\n\n")
	}

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Locked {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %c)  %s", prefix, mark, 'A'+i, opt)

		var style lipgloss.Style
		switch {
		case m.Correct != NoChoice && i == m.Correct:
			style = theme.Correct
		case m.Correct != NoChoice && i == m.Chosen:
			style = theme.Incorrect
		case m.Locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// letterIndex maps "a".."z" to 0..25.
func letterIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return int(c - 'a'), true
}
