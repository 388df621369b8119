package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the lesson event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent lesson events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		lessonID, _ := cmd.Flags().GetString("lesson")
		typ, _ := cmd.Flags().GetString("type")

		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.EventRepo().ListLessonEvents(cmd.Context(), store.QueryOpts{
			LessonID: lessonID,
			Type:     events.Type(typ),
			Limit:    limit,
			Newest:   true,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No lesson events found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-20s  %-8s  %-20s  %s\n",
			"Seq", "Timestamp", "Lesson", "Run", "Type", "Title")
		fmt.Println(strings.Repeat("─", 110))

		for _, e := range list {
			fmt.Printf("%-6d  %-19s  %-20s  %-8s  %-20s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.LessonID, 20),
				truncate(e.RunID, 8),
				e.Type,
				e.Title,
			)
		}
		return nil
	},
}

var eventsViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View one lesson event as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var seq int64
		if _, err := fmt.Sscanf(args[0], "%d", &seq); err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}

		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLessonEvent(cmd.Context(), seq)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", seq)
		}

		// Marshal the embedded Event, not the StoredEvent wrapper.
		out, err := json.MarshalIndent(e.Event, "", "  ")
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		fmt.Printf("Sequence:  %d\n\n%s\n", e.Sequence, out)
		return nil
	},
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsListCmd.Flags().StringP("lesson", "l", "", "Filter by lesson ID")
	eventsListCmd.Flags().StringP("type", "t", "", "Filter by event type (e.g. phase_change, test_submitted)")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsViewCmd)
}
