package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/coach"
	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/llm"
	"github.com/abhisek/labquest/internal/quiz"
	"github.com/abhisek/labquest/internal/ui/markdown"
)

var previewCmd = &cobra.Command{
	Use:   "preview <lesson>",
	Short: "Take a lesson's test on the command line (no database)",
	Long: `Answer a lesson's test question by question and see the grade.

This is a stateless authoring tool: no database, no progress, no events.
When an LLM provider is configured a failed attempt also prints the
review note a learner would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	catalog, err := lessons.Open(ctx, cfg.LessonsDir)
	if err != nil {
		return err
	}
	l, ok := catalog.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown lesson %q", args[0])
	}
	if len(l.Test) == 0 {
		return fmt.Errorf("lesson %q has no test", l.ID)
	}

	threshold := min(l.Config(cfg.Session()).PassThreshold, len(l.Test))
	style := cfg.Markdown.Style

	fmt.Printf("\n%s: %d questions, pass mark %d\n", l.Title, len(l.Test), threshold)
	fmt.Println(strings.Repeat("═", 60))

	scanner := bufio.NewScanner(os.Stdin)
	answers := quiz.NewAnswers(len(l.Test))

	for i, q := range l.Test {
		fmt.Printf("\nQ%d/%d\n", i+1, len(l.Test))
		if q.Scenario != "" {
			fmt.Println(markdown.Render(q.Scenario, 80, style))
		}
		fmt.Println(markdown.Render("**"+q.Prompt+"**", 80, style))
		for j, o := range q.Options {
			fmt.Printf("  %c) %s\n", 'a'+j, o.Text)
		}

		choice, ok := readChoice(scanner, len(q.Options))
		if !ok {
			fmt.Println("\nInput closed, grading what was answered.")
			break
		}
		answers.Set(i, choice)
	}

	r := quiz.Grade(l.Test, answers, threshold)

	fmt.Println()
	fmt.Println(strings.Repeat("═", 60))
	for i, q := range l.Test {
		mark := "\033[32m✓\033[0m"
		if !q.IsCorrect(answers[i]) {
			mark = "\033[31m✗\033[0m"
		}
		fmt.Printf("%s Q%d  correct: %c\n", mark, i+1, 'a'+q.CorrectIndex())
	}
	verdict := "PASSED"
	if !r.Passed {
		verdict = "NOT YET"
	}
	fmt.Printf("\nScore: %d/%d (pass mark %d)  %s\n", r.Score, r.Total, r.Threshold, verdict)

	if r.Passed {
		return nil
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, nil, nil)
	if errors.Is(err, llm.ErrDisabled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	fmt.Println("\nWriting review note...")
	note, err := coach.NewService(provider, cfg.Coach, nil).Generate(ctx, coach.InputFor(l, answers, r, 1))
	if err != nil {
		return err
	}
	fmt.Println(markdown.Render(note.Markdown(), 80, style))
	return nil
}

// readChoice reads a letter answer, re-prompting on bad input. ok is false
// when stdin is exhausted.
func readChoice(scanner *bufio.Scanner, n int) (int, bool) {
	last := 'a' + rune(n-1)
	for {
		fmt.Printf("Answer (a-%c): ", last)
		if !scanner.Scan() {
			return 0, false
		}
		s := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(s) == 1 && rune(s[0]) >= 'a' && rune(s[0]) <= last {
			return int(s[0] - 'a'), true
		}
		fmt.Printf("Choose a letter between a and %c.\n", last)
	}
}
