package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}

		if len(st.Lessons) == 0 {
			fmt.Println("No lessons played yet.")
			return nil
		}

		fmt.Printf("%-22s  %5s  %7s  %6s  %8s  %-14s  %6s  %s\n",
			"Lesson", "Runs", "Events", "Tests", "Restarts", "Phase", "Best", "Mastered")
		fmt.Println(strings.Repeat("─", 96))

		for _, ls := range st.Lessons {
			phaseLabel, best, mastered := "-", "-", ""
			if p := ls.Progress; p != nil {
				phaseLabel = p.Phase.Label()
				if p.Total > 0 {
					best = fmt.Sprintf("%d/%d", p.BestScore, p.Total)
				}
				if p.Passed {
					mastered = "★"
				}
			}
			fmt.Printf("%-22s  %5d  %7d  %6d  %8d  %-14s  %6s  %s\n",
				truncate(ls.LessonID, 22), ls.Runs, ls.Events, ls.Submitted, ls.Restarts, phaseLabel, best, mastered)
		}

		fmt.Println(strings.Repeat("─", 96))
		fmt.Printf("%d of %d lessons mastered\n", st.Mastered, len(st.Lessons))

		if st.LLM.Requests > 0 {
			fmt.Printf("\nReview notes: %d requests (%d failed), %d tokens in / %d out\n",
				st.LLM.Requests, st.LLM.Failures, st.LLM.InputTokens, st.LLM.OutputTokens)
		}
		return nil
	},
}
