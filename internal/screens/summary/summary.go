// Package summary shows the outcome of a lesson test.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/coach"
	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/quiz"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/ui/components"
	"github.com/abhisek/labquest/internal/ui/layout"
	"github.com/abhisek/labquest/internal/ui/markdown"
	"github.com/abhisek/labquest/internal/ui/theme"
)

// Report is what the summary screen shows.
type Report struct {
	Lesson   *lessons.Lesson
	Result   quiz.Result
	Answers  quiz.Answers
	Attempts int
	Note     *coach.Note
	Style    string
}

// SummaryScreen displays a graded test.
type SummaryScreen struct {
	report Report
	offset int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(r Report) *SummaryScreen {
	return &SummaryScreen{report: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.report
	if r.Lesson == nil {
		return ""
	}
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render(r.Lesson.Title))
	b.WriteString("\n\n")

	res := r.Result
	score := fmt.Sprintf("Score %d/%d   Pass mark %d   Attempts %d", res.Score, res.Total, res.Threshold, r.Attempts)
	if res.Passed {
		b.WriteString(theme.Correct.Render(score))
	} else {
		b.WriteString(theme.Incorrect.Render(score))
	}
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", ratio(res.Score, res.Total), true, cw).View())
	b.WriteString("\n\n")

	if len(res.Missed) == 0 {
		b.WriteString(theme.Body.Render("Every question answered correctly."))
	} else {
		b.WriteString(theme.Label.Render("Missed questions"))
		b.WriteString("\n")
		b.WriteString(markdown.Render(MissedMarkdown(r.Lesson, r.Answers, res), cw, r.Style))
	}

	if r.Note != nil {
		b.WriteString("\n\n")
		b.WriteString(markdown.Render(r.Note.Markdown(), cw, r.Style))
	}

	body := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(b.String()))
	return scroll(body, s.offset, height)
}

// MissedMarkdown lists each missed question with the chosen and correct
// answers and the explanation.
func MissedMarkdown(l *lessons.Lesson, answers quiz.Answers, r quiz.Result) string {
	var b strings.Builder
	for _, i := range r.Missed {
		if i < 0 || i >= len(l.Test) {
			continue
		}
		q := l.Test[i]
		fmt.Fprintf(&b, "**%d. %s**\n\n", i+1, q.Prompt)
		chosen := "no answer"
		if i < len(answers) && answers[i] >= 0 && answers[i] < len(q.Options) {
			chosen = q.Options[answers[i]].Text
		}
		correct := ""
		if c := q.CorrectIndex(); c >= 0 {
			correct = q.Options[c].Text
		}
		fmt.Fprintf(&b, "- You chose: %s\n- Correct: %s\n", chosen, correct)
		if q.Explanation != "" {
			fmt.Fprintf(&b, "\n%s\n", q.Explanation)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func ratio(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	return float64(n) / float64(of)
}

// scroll shows height lines starting at offset, clamped so the last page
// stays full.
func scroll(s string, offset, height int) string {
	lines := strings.Split(s, "\n")
	if height <= 0 || len(lines) <= height {
		return s
	}
	if last := len(lines) - height; offset > last {
		offset = last
	}
	return strings.Join(lines[offset:offset+height], "\n")
}
