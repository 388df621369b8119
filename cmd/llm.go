package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/llm"
	"github.com/abhisek/labquest/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect review-note LLM calls and their cost",
}

func rule(n int) string { return strings.Repeat("─", n) }

func checkmark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")
		failed, _ := cmd.Flags().GetBool("failed")

		opts := store.QueryOpts{Purpose: purpose, Newest: true}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		if !failed {
			// Failures are filtered client side, so only cap unfiltered queries.
			opts.Limit = limit
		}

		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query LLM events: %w", err)
		}

		var shown int
		for _, e := range calls {
			if failed && e.Success {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-5s  %-19s  %-12s  %-28s  %6s  %6s  %7s  %s\n",
					"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
				fmt.Println(rule(100))
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-28s  %6d  %6d  %7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 12),
				truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs,
				checkmark(e.Success),
			)
			if shown++; limit > 0 && shown == limit {
				break
			}
		}
		if shown == 0 {
			fmt.Println("No LLM calls found.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw output of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get LLM event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("LLM event %d not found", id)
		}

		fields := [][2]string{
			{"ID", fmt.Sprint(e.ID)},
			{"Sequence", fmt.Sprint(e.Sequence)},
			{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", checkmark(e.Success)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", e.ErrorMessage})
		}
		for _, f := range fields {
			fmt.Printf("%-10s %s\n", f[0]+":", f[1])
		}

		section := func(name, body string) {
			fmt.Printf("\n%s\n%s\n%s\n", rule(60), name, rule(60))
			if body == "" {
				body = "(not captured)"
			}
			fmt.Println(body)
		}
		section("REQUEST", e.RequestBody)
		section("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}
		printPurposeUsage(byPurpose)

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) > 0 {
			fmt.Println()
			printModelCost(byModel)
		}
		return nil
	},
}

func printPurposeUsage(usage []store.PurposeUsage) {
	fmt.Println("Usage by purpose")
	fmt.Println(rule(72))
	fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Println(rule(72))

	var total store.PurposeUsage
	for _, u := range usage {
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(u.Purpose, 16), u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	fmt.Println(rule(72))
	fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", total.Calls, total.InputTokens, total.OutputTokens, total.InputTokens+total.OutputTokens)
}

func printModelCost(usage []store.ModelUsage) {
	fmt.Println("Estimated cost (USD)")
	fmt.Println(rule(72))
	fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule(72))

	var sum float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			sum += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Printf("%-32s  %6d  %10d  %10d  %9s\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Println(rule(72))
	fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(sum))
	if len(unpriced) > 0 {
		fmt.Printf("\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. review-note, hint)")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this (e.g. 24h)")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
