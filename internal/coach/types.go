// Package coach writes short review notes for a failed knowledge test.
// Notes come from an optional LLM provider and are generated off the UI
// goroutine; without a provider the coach stays silent.
package coach

import (
	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/quiz"
)

// Note is a generated review note.
type Note struct {
	LessonID string
	Attempt  int
	Summary  string
	Tips     []string
	Retry    string // one concrete thing to do on the next attempt
}

// Missed is one question the learner got wrong.
type Missed struct {
	Prompt      string
	Scenario    string
	Chosen      string // empty when unanswered
	Correct     string
	Explanation string
}

// Input is everything needed to write a note.
type Input struct {
	LessonID  string
	Title     string
	Subject   string
	Attempt   int
	Score     int
	Total     int
	Threshold int
	Missed    []Missed
}

// InputFor builds note input from a graded submission.
func InputFor(l *lessons.Lesson, answers quiz.Answers, r quiz.Result, attempt int) Input {
	in := Input{
		LessonID:  l.ID,
		Title:     l.Title,
		Subject:   l.Subject,
		Attempt:   attempt,
		Score:     r.Score,
		Total:     r.Total,
		Threshold: r.Threshold,
	}
	for _, i := range r.Missed {
		if i < 0 || i >= len(l.Test) {
			continue
		}
		q := l.Test[i]
		m := Missed{
			Prompt:      q.Prompt,
			Scenario:    q.Scenario,
			Explanation: q.Explanation,
		}
		if c := q.CorrectIndex(); c >= 0 {
			m.Correct = q.Options[c].Text
		}
		if i < len(answers) {
			if a := answers[i]; a >= 0 && a < len(q.Options) {
				m.Chosen = q.Options[a].Text
			}
		}
		in.Missed = append(in.Missed, m)
	}
	return in
}
