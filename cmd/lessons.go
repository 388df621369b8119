package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/ui/markdown"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "Browse and check lesson content",
}

var lessonsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in lessons and those in lessons_dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := lessons.Open(cmd.Context(), cfg.LessonsDir)
		if err != nil {
			return err
		}

		fmt.Printf("%-22s  %-34s  %-22s  %-10s  %s\n",
			"ID", "Title", "Subject", "Model", "Questions")
		fmt.Println(strings.Repeat("─", 104))

		for _, l := range catalog.All() {
			fmt.Printf("%-22s  %-34s  %-22s  %-10s  %d\n",
				truncate(l.ID, 22), truncate(l.Title, 34), truncate(l.Subject, 22), l.Model, len(l.Test))
		}

		fmt.Printf("\n%d lessons\n", catalog.Len())
		return nil
	},
}

var lessonsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a lesson's outline and effective gates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := lessons.Open(cmd.Context(), cfg.LessonsDir)
		if err != nil {
			return err
		}
		l, ok := catalog.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown lesson %q", args[0])
		}
		fmt.Println(markdown.Render(outline(l), 80, cfg.Markdown.Style))
		return nil
	},
}

// outline renders a lesson as a markdown overview.
func outline(l *lessons.Lesson) string {
	g := l.Config(cfg.Session())
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l.Title)
	if l.Subject != "" {
		fmt.Fprintf(&b, "*%s*\n\n", l.Subject)
	}
	if l.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", l.Summary)
	}
	fmt.Fprintf(&b, "- **ID:** `%s`\n- **Model:** `%s`\n- **Source:** %s\n\n", l.ID, l.Model, l.Source)

	b.WriteString("## Gates\n\n")
	fmt.Fprintf(&b, "- Pass mark: %d of %d\n", min(g.PassThreshold, len(l.Test)), len(l.Test))
	fmt.Fprintf(&b, "- Applications to explore: %d of %d\n", min(g.MinApplications, len(l.Applications)), len(l.Applications))
	fmt.Fprintf(&b, "- Jump policy: %s\n- Failed test returns to: %s\n- Debounce: %s\n\n", g.JumpPolicy, g.RetryPhase.Label(), g.Debounce)

	b.WriteString("## Predictions\n\n")
	fmt.Fprintf(&b, "1. %s\n2. %s\n\n", l.Predict.Prompt, l.TwistPredict.Prompt)

	if len(l.Applications) > 0 {
		b.WriteString("## Applications\n\n")
		for _, a := range l.Applications {
			fmt.Fprintf(&b, "- **%s**: %s\n", a.Title, a.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var lessonsLintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Validate lesson files in a directory (default lessons_dir)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.LessonsDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no directory given and lessons_dir is not set")
		}

		results, err := lessons.Lint(cmd.Context(), os.DirFS(dir), ".")
		if err != nil {
			return fmt.Errorf("lint %s: %w", dir, err)
		}
		if len(results) == 0 {
			fmt.Printf("No lesson files in %s\n", dir)
			return nil
		}

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Printf("\033[31m✗\033[0m %s\n    %v\n", r.File, r.Err)
				continue
			}
			fmt.Printf("\033[32m✓\033[0m %s (%s)\n", r.File, r.Lesson.ID)
		}

		fmt.Printf("\n%d files, %d failed\n", len(results), failed)
		if failed > 0 {
			return fmt.Errorf("%d lesson files failed validation", failed)
		}
		return nil
	},
}

func init() {
	lessonsCmd.AddCommand(lessonsListCmd)
	lessonsCmd.AddCommand(lessonsShowCmd)
	lessonsCmd.AddCommand(lessonsLintCmd)
}
