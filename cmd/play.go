package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [lesson]",
	Short: "Open the lesson list, or jump straight into a lesson",
	Long: `Without an argument, play opens the lesson list. With a lesson ID it opens that
lesson where you left off, or at --phase.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var l launch
		if len(args) == 1 {
			l.lessonID = args[0]
		}
		l.phase, _ = cmd.Flags().GetString("phase")
		l.watch, _ = cmd.Flags().GetBool("watch")

		if err := l.validate(); err != nil {
			return err
		}
		return runApp(cmd, l)
	},
}

// validate checks flag combinations. An unrecognised phase is not an error:
// the lesson opens at the hook instead.
func (l launch) validate() error {
	if l.phase != "" && l.lessonID == "" {
		return fmt.Errorf("--phase needs a lesson")
	}
	return nil
}

func init() {
	playCmd.Flags().String("phase", "", "Phase to open the lesson at (e.g. predict, test)")
	playCmd.Flags().Bool("watch", false, "Reload lessons from lessons_dir when their files change")
}
