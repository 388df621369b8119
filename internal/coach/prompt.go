package coach

import (
	"fmt"
	"strings"
)

const noteSystemPrompt = `You are a friendly physics and engineering coach. A learner just failed the short knowledge test at the end of an interactive lesson. Explain the idea they are missing without simply listing the right answers.`

func buildNoteMessage(in Input, budget int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", in.Title)
	if in.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	}
	fmt.Fprintf(&b, "Score: %d/%d (pass mark %d)\n", in.Score, in.Total, in.Threshold)
	if in.Attempt > 1 {
		fmt.Fprintf(&b, "Attempt: %d\n", in.Attempt)
	}

	b.WriteString("\nMissed questions:\n")
	b.WriteString(missedDetail(in.Missed, budget))

	b.WriteString(`
Instructions:
1. Summarize in 2-3 sentences the single idea that connects these mistakes.
2. Give 1-3 short tips. Each tip should point at a cause, not an answer.
3. Suggest one thing to try in the lesson's simulation before retrying the test.
4. Plain text only. Use ^ for powers and * for multiplication.`)

	return b.String()
}

// missedDetail renders the missed questions in full, falling back to a
// compact form when the full text would exceed budget.
func missedDetail(missed []Missed, budget int) string {
	if len(missed) == 0 {
		return "None\n"
	}
	full := renderMissed(missed, true)
	if budget <= 0 || len(full) <= budget {
		return full
	}
	compact := renderMissed(missed, false)
	if len(compact) <= budget {
		return compact
	}
	// Keep whole lines only.
	cut := strings.LastIndexByte(compact[:budget], '\n')
	if cut < 0 {
		return ""
	}
	return compact[:cut+1] + "(more omitted)\n"
}

func renderMissed(missed []Missed, full bool) string {
	var b strings.Builder
	for i, m := range missed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Prompt)
		if full && m.Scenario != "" {
			fmt.Fprintf(&b, "   Scenario: %s\n", m.Scenario)
		}
		chosen := m.Chosen
		if chosen == "" {
			chosen = "(no answer)"
		}
		fmt.Fprintf(&b, "   Chose: %s | Correct: %s\n", chosen, m.Correct)
		if full && m.Explanation != "" {
			fmt.Fprintf(&b, "   Why: %s\n", m.Explanation)
		}
	}
	return b.String()
}
