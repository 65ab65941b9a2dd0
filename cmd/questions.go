package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/question"
	"github.com/abhisek/quizgenius/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Browse saved questions",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		f := store.QuestionFilter{}
		f.RunID, _ = cmd.Flags().GetString("run")
		f.DocumentID, _ = cmd.Flags().GetString("document")
		f.Limit, _ = cmd.Flags().GetInt("limit")
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			qt, ok := question.ParseType(t)
			if !ok {
				return fmt.Errorf("unknown question type %q", t)
			}
			f.Type = qt
		}

		qs, err := s.QuestionRepo().List(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			return writeJSON(out, qs)
		}
		if len(qs) == 0 {
			fmt.Fprintln(out, "No saved questions found.")
			return nil
		}
		for i, q := range qs {
			fmt.Fprintf(out, "%s  %s\n", q.ID, q.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, renderQuestion(i+1, q.Reviewed, cfg.Pipeline.Quality.AcceptThreshold))
		}
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.RunRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			return writeJSON(out, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-19s  %-10s  %5s  %5s  %5s  %6s  %s\n",
			"ID", "Created", "State", "Want", "Got", "Rej", "Ratio", "Notes")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, r := range runs {
			var notes []string
			if r.Partial {
				notes = append(notes, "partial:"+r.PartialReason)
			}
			if r.ErrorCount > 0 {
				notes = append(notes, fmt.Sprintf("%d errors", r.ErrorCount))
			}
			fmt.Fprintf(out, "%-36s  %-19s  %-10s  %5d  %5d  %5d  %5.0f%%  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.State,
				r.Requested,
				r.Accepted,
				r.Rejected,
				r.SuccessRatio*100,
				strings.Join(notes, ", "),
			)
		}
		return nil
	},
}

func init() {
	f := questionsListCmd.Flags()
	f.String("run", "", "Only questions from this run id")
	f.String("document", "", "Only questions from this document id")
	f.String("type", "", "Only this question type (mc or tf)")
	f.IntP("limit", "n", 50, "Maximum number of questions")

	questionsCmd.AddCommand(questionsListCmd)

	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}
