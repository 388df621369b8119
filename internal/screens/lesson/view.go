package lesson

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/labquest/internal/formula"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
	"github.com/abhisek/labquest/internal/ui/components"
	"github.com/abhisek/labquest/internal/ui/markdown"
	"github.com/abhisek/labquest/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{
		s.renderNav(cw),
		components.ProgressBar{
			Percent: float64(s.ctrl.Phase().Index()+1) / float64(phase.Count),
			Width:   cw,
			Value:   s.Status(),
		}.View(),
		"",
		components.Panel(s.ctrl.Phase().Label(), s.renderBody(cw-6), cw, true),
	}
	if s.flash != "" {
		sections = append(sections, theme.Hint.Render(s.flash))
	}
	sections = append(sections, s.renderActions())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return clip(lipgloss.PlaceHorizontal(width, lipgloss.Center, content), height)
}

// clip drops lines past height.
func clip(s string, height int) string {
	if height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= height {
		return s
	}
	return strings.Join(lines[:height], "\n")
}

// renderNav draws the phase strip. Phases the jump policy allows are
// bright, locked ones are dimmed.
func (s *Screen) renderNav(cw int) string {
	cur := s.ctrl.Phase()
	render := func(short bool) string {
		parts := make([]string, 0, phase.Count)
		for i, p := range phase.All() {
			label := fmt.Sprintf("%d", (i+1)%10)
			if !short || p == cur {
				label += " " + p.Label()
			}
			var style lipgloss.Style
			switch {
			case p == cur:
				style = theme.Selected.Underline(true)
			case s.ctrl.CanJumpTo(p):
				style = theme.Unselected
			default:
				style = theme.Disabled
			}
			parts = append(parts, style.Render(label))
		}
		return strings.Join(parts, theme.Subtitle.Render(" › "))
	}
	if nav := render(false); lipgloss.Width(nav) <= cw {
		return nav
	}
	return render(true)
}

func (s *Screen) renderBody(w int) string {
	switch p := s.ctrl.Phase(); p {
	case phase.Hook:
		return s.renderHook(w)
	case phase.Predict, phase.TwistPredict:
		return s.renderPredict()
	case phase.Play, phase.TwistPlay:
		return s.renderPlay(w)
	case phase.Review, phase.TwistReview:
		return s.renderReview(p, w)
	case phase.Transfer:
		return s.renderTransfer(w)
	case phase.Test:
		return s.renderTest(w)
	case phase.Mastery:
		return s.renderMastery(w)
	}
	return ""
}

func (s *Screen) md(text string, w int) string {
	return markdown.Render(text, w, s.deps.Style)
}

func (s *Screen) renderHook(w int) string {
	h := s.lesson.Hook
	return theme.Title.Render(h.Headline) + "\n\n" + s.md(h.Body, w)
}

func (s *Screen) renderPredict() string {
	out := s.choice.View()
	if s.choice.Chosen != components.NoChoice {
		out += "\n" + theme.Hint.Render("Prediction recorded. Change it any time before moving on.")
	}
	return out
}

func (s *Screen) renderPlay(w int) string {
	sim := &s.sim
	if !sim.ready() {
		return theme.Hint.Render(fmt.Sprintf("No simulation is available for model %q.", s.lesson.Model))
	}

	var b strings.Builder
	if sim.intro != "" {
		b.WriteString(theme.Body.Render(sim.intro))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Label.Render(sim.model.Name))
	b.WriteString("\n")
	for i, p := range sim.params {
		line := fmt.Sprintf("%-24s %s", p.Name, formula.Reading{Value: sim.values[p.Key], Unit: p.Unit}.Format())
		if i == sim.cursor {
			b.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, r := range sim.readings() {
		pct := 0.0
		if r.Scale > 0 {
			pct = r.Value / r.Scale
		}
		bar := components.ProgressBar{Label: fmt.Sprintf("%-18s", r.Name), Percent: pct, Width: w, Value: r.Format()}
		if pct > 1 {
			bar.Fill = theme.Accent
		}
		b.WriteString(bar.View())
		b.WriteString("\n")
	}

	if sim.stepper != nil {
		b.WriteString("\n")
		status := "running"
		if !sim.running {
			status = "settled"
		}
		b.WriteString(components.ProgressBar{Label: "Run", Percent: sim.stepper.Progress(), Width: w, Value: status}.View())
	} else {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press r to run the simulation over time."))
	}
	return b.String()
}

func (s *Screen) renderReview(p phase.Phase, w int) string {
	made, correct := s.ctrl.PredictionCorrect()
	picked := s.ctrl.State().Prediction
	if p == phase.TwistReview {
		made, correct = s.ctrl.TwistPredictionCorrect()
		picked = s.ctrl.State().TwistPrediction
	}
	rev := s.lesson.ReviewFor(p)

	var b strings.Builder
	switch {
	case !made:
		b.WriteString(theme.Hint.Render("You skipped the prediction."))
	case correct:
		b.WriteString(theme.Correct.Render("Your prediction was right."))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(rev.Correct))
	default:
		b.WriteString(theme.Incorrect.Render("Not what happened."))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(rev.Incorrect))
	}
	if made {
		if c, ok := s.lesson.PredictionFor(p).Choice(picked); ok {
			b.WriteString("\n")
			b.WriteString(theme.Subtitle.Render("You predicted: " + c.Text))
		}
	}
	if rev.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(s.md(rev.Body, w))
	}
	return b.String()
}

func (s *Screen) renderTransfer(w int) string {
	st := s.ctrl.State()
	need := s.ctrl.Config().MinApplications

	var b strings.Builder
	b.WriteString(components.ProgressBar{
		Label:   "Explored",
		Percent: ratio(len(st.Applications), need),
		Width:   w,
		Value:   fmt.Sprintf("%d/%d", len(st.Applications), need),
	}.View())
	b.WriteString("\n\n")

	for i, a := range s.lesson.Applications {
		mark := "○"
		if st.Applications[i] {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s", mark, a.Title)
		if i == s.card {
			b.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
		if s.open[i] {
			b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Width(w).Render(
				theme.Body.Render(a.Summary) + "\n" + theme.Subtitle.Render(a.Detail)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func ratio(n, of int) float64 {
	if of <= 0 {
		return 1
	}
	return float64(n) / float64(of)
}

func (s *Screen) renderTest(w int) string {
	if len(s.quiz) == 0 {
		return theme.Hint.Render("This lesson has no test.")
	}
	st := s.ctrl.State()

	var b strings.Builder
	if st.Submitted {
		r := st.Result
		line := fmt.Sprintf("Score %d/%d (pass mark %d)", r.Score, r.Total, r.Threshold)
		if r.Passed {
			b.WriteString(theme.Correct.Render(line + "  Passed!"))
		} else {
			b.WriteString(theme.Incorrect.Render(line + "  Not yet"))
		}
		b.WriteString("\n\n")
	}

	// Question strip: answered, unanswered, or graded.
	dots := make([]string, len(s.quiz))
	for i := range s.quiz {
		dot := "○"
		style := theme.Subtitle
		if i < len(st.Answers) && st.Answers[i] != quiz.Unanswered {
			dot = "●"
			style = theme.Unselected
		}
		if st.Submitted && i < len(s.marks) {
			style = theme.Incorrect
			if s.marks[i] {
				style = theme.Correct
			}
		}
		if i == s.question {
			dot = "◉"
			style = style.Underline(true)
		}
		dots[i] = style.Render(dot)
	}
	b.WriteString(strings.Join(dots, " "))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   Question %d of %d", s.question+1, len(s.quiz))))
	b.WriteString("\n\n")

	q := s.lesson.Test[s.question]
	if q.Scenario != "" {
		b.WriteString(lipgloss.NewStyle().Width(w).Render(theme.Hint.Render(q.Scenario)))
		b.WriteString("\n\n")
	}
	b.WriteString(s.quiz[s.question].View())

	if st.Submitted && q.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(w).Render(theme.Subtitle.Render(q.Explanation)))
	}

	switch {
	case s.note != nil:
		b.WriteString("\n\n")
		b.WriteString(s.md(s.note.Markdown(), w))
	case s.noteWait:
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("The coach is writing a note on your answers..."))
	}
	return b.String()
}

func (s *Screen) renderMastery(w int) string {
	st := s.ctrl.State()
	var b strings.Builder
	b.WriteString(theme.Correct.Render(fmt.Sprintf("%s mastered!", s.lesson.Title)))
	b.WriteString("\n\n")
	if msg := s.lesson.Mastery.Message; msg != "" {
		b.WriteString(s.md(msg, w))
		b.WriteString("\n\n")
	}
	attempts := "attempt"
	if st.Attempts != 1 {
		attempts += "s"
	}
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Final score %d/%d after %d %s.",
		st.Result.Score, st.Result.Total, st.Attempts, attempts)))
	return b.String()
}

func (s *Screen) renderActions() string {
	back := components.NewButton("p", "Back", s.ctrl.CanGoBack())
	if s.ctrl.Phase() == phase.Last {
		return components.Buttons(back, components.NewButton("Enter", "Lessons", true))
	}
	next := components.NewButton("n", "Next", s.ctrl.CanAdvance())
	if !next.Active {
		next = next.Disable(s.blockedReason())
	}
	if submit, ok := s.submitButton(); ok {
		return components.Buttons(back, submit, next)
	}
	return components.Buttons(back, next)
}

// submitButton is shown for an open test attempt and stays disabled until
// every question has an answer.
func (s *Screen) submitButton() (components.Button, bool) {
	if s.ctrl.Phase() != phase.Test || s.ctrl.State().Submitted {
		return components.Button{}, false
	}
	b := components.NewButton("s", "Submit", true)
	if !s.ctrl.CanSubmit() {
		left := len(s.lesson.Test) - s.ctrl.State().Answers.Answered()
		b = b.Disable(fmt.Sprintf("%d unanswered", left))
	}
	return b, true
}
