package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [lesson]",
	Short: "Reset learner data for one lesson, or for all lessons",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var lessonID string
		if len(args) == 1 {
			lessonID = args[0]
		}
		yes, _ := cmd.Flags().GetBool("yes")

		target := "all lessons"
		if lessonID != "" {
			target = fmt.Sprintf("lesson %q", lessonID)
		}
		if !yes && !confirm(fmt.Sprintf("Delete progress and events for %s?", target)) {
			fmt.Println("Aborted.")
			return nil
		}

		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.Reset(cmd.Context(), lessonID)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d events and %d progress records for %s.\n", res.Events, res.Progress, target)
		return nil
	},
}

// confirm asks a yes/no question on stdin. Anything but y/yes is no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fmt.Println()
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
