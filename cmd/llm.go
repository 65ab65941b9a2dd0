package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			return writeJSON(out, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No model calls recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-28s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 116))
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-28s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 28),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			return writeJSON(out, e)
		}

		fmt.Fprintf(out, "ID:        %d\n", e.ID)
		fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
		fmt.Fprintf(out, "Model:     %s\n", e.Model)
		fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
		}
		fmt.Fprintln(out)
		printBody(out, "REQUEST", e.RequestBody)
		printBody(out, "RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			return writeJSON(out, map[string]any{"by_purpose": byPurpose, "by_model": byModel})
		}
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No model usage recorded yet.")
			return nil
		}

		printPurposeUsage(out, byPurpose)
		if len(byModel) > 0 {
			fmt.Fprintln(out)
			printModelCost(out, byModel)
		}
		return nil
	},
}

func storeFromFlags(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func printBody(w io.Writer, title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, sep)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(w, body)
}

func printPurposeUsage(w io.Writer, stats []store.PurposeUsage) {
	rule := strings.Repeat("─", 84)
	fmt.Fprintln(w, "Usage by Purpose")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(w, rule)

	var calls, in, outTok int
	for _, st := range stats {
		fmt.Fprintf(w, "%-28s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(st.Purpose, 28), st.Calls, st.InputTokens, st.OutputTokens,
			st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		in += st.InputTokens
		outTok += st.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, outTok, in+outTok)
}

func printModelCost(w io.Writer, usage []store.ModelUsage) {
	rule := strings.Repeat("─", 76)
	fmt.Fprintln(w, "Estimated Cost (USD)")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, rule)

	var total float64
	var unknown []string
	for _, mu := range usage {
		cost := llm.LookupCost(mu.Model)
		if cost == nil {
			unknown = append(unknown, mu.Model)
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
			continue
		}
		c := cost.Cost(mu.InputTokens, mu.OutputTokens)
		total += c
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
	}

	fmt.Fprintln(w, rule)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

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
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. question-gen:multiple_choice)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
