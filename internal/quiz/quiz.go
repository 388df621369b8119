// Package quiz scores the knowledge test that closes every lesson.
package quiz

// Unanswered marks a question with no selection.
const Unanswered = -1

// Option is one choice in a multiple-choice question.
type Option struct {
	Text    string `yaml:"text" json:"text"`
	Correct bool   `yaml:"correct,omitempty" json:"correct,omitempty"`
}

// Question is a static test item. Exactly one option is expected to be
// flagged correct, but scoring only looks at the flag on the chosen option.
type Question struct {
	Scenario    string   `yaml:"scenario" json:"scenario"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Options     []Option `yaml:"options" json:"options"`
	Explanation string   `yaml:"explanation" json:"explanation"`
}

// CorrectIndex returns the index of the first option flagged correct, or -1.
func (q Question) CorrectIndex() int {
	for i, o := range q.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// IsCorrect reports whether option i is in range and flagged correct.
func (q Question) IsCorrect(i int) bool {
	return i >= 0 && i < len(q.Options) && q.Options[i].Correct
}

// Answers holds one selected option index per question.
type Answers []int

// NewAnswers returns n unanswered slots.
func NewAnswers(n int) Answers {
	a := make(Answers, n)
	a.Reset()
	return a
}

// Reset clears every selection.
func (a Answers) Reset() {
	for i := range a {
		a[i] = Unanswered
	}
}

// Set records option for question q. Out-of-range q is ignored.
func (a Answers) Set(q, option int) bool {
	if q < 0 || q >= len(a) || option < 0 {
		return false
	}
	a[q] = option
	return true
}

// Answered returns the number of questions with a selection.
func (a Answers) Answered() int {
	n := 0
	for _, v := range a {
		if v != Unanswered {
			n++
		}
	}
	return n
}

// Complete reports whether every question has a selection.
// An empty answer sheet is never complete.
func Complete(a Answers) bool {
	return len(a) > 0 && a.Answered() == len(a)
}

// Score counts questions whose selected option is flagged correct.
// Unanswered or out-of-range selections never count.
func Score(questions []Question, a Answers) int {
	score := 0
	for i, q := range questions {
		if i >= len(a) {
			break
		}
		if q.IsCorrect(a[i]) {
			score++
		}
	}
	return score
}

// Passed reports whether score meets the pass threshold.
func Passed(score, threshold int) bool {
	return score >= threshold
}

// Result is the outcome of a submitted test.
type Result struct {
	Score     int
	Total     int
	Threshold int
	Passed    bool
	Missed    []int // question indices answered incorrectly
}

// Grade scores a submission against threshold.
func Grade(questions []Question, a Answers, threshold int) Result {
	r := Result{
		Score:     Score(questions, a),
		Total:     len(questions),
		Threshold: threshold,
	}
	for i, q := range questions {
		if i >= len(a) || !q.IsCorrect(a[i]) {
			r.Missed = append(r.Missed, i)
		}
	}
	r.Passed = Passed(r.Score, threshold)
	return r
}
