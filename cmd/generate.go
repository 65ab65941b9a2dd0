package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/config"
	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/pipeline"
	"github.com/abhisek/quizgenius/internal/question"
	"github.com/abhisek/quizgenius/internal/suitability"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file|-]",
	Short: "Generate validated questions from a document",
	Long: "Reads document text from a file (or stdin), assesses it, splits it into\n" +
		"chunks, asks the configured model for questions and prints the accepted set.\n" +
		"Interrupting the run returns whatever was produced so far.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		req, err := buildRequest(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("require-suitable") {
			cfg.Pipeline.Policy.RequireSuitable, _ = cmd.Flags().GetBool("require-suitable")
		}
		if err := resolveLLMConfig(&cfg); err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		provider, closeProvider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			return err
		}
		defer closeProvider()

		opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithRunRecorder(st.RunRepo())}
		if save, _ := cmd.Flags().GetBool("save"); save {
			opts = append(opts, pipeline.WithSink(st.QuestionRepo()))
		}

		run, runErr := pipeline.New(provider, cfg.Pipeline, opts...).Run(ctx, req)
		if run == nil {
			return runErr
		}

		out := cmd.OutOrStdout()
		if jsonOutput(cmd) {
			if err := writeJSON(out, run); err != nil {
				return err
			}
			return runErr
		}

		fmt.Fprintf(out, "Run %s: %s\n\n", run.ID, run.State)
		if run.Report != nil {
			renderReport(out, run.Report, cfg.Pipeline.Suitability.MinScore)
		}
		if run.Result != nil {
			showRejected, _ := cmd.Flags().GetBool("show-rejected")
			renderResult(out, run.Result, cfg.Pipeline.Quality.AcceptThreshold, showRejected)
		}
		if len(run.StoredIDs) > 0 {
			fmt.Fprintf(out, "\nSaved %d questions.\n", len(run.StoredIDs))
		}

		var insufficient *suitability.ContentInsufficientError
		if errors.As(runErr, &insufficient) {
			return fmt.Errorf("run aborted: %w", runErr)
		}
		return runErr
	},
}

func buildRequest(cmd *cobra.Command, args []string) (question.Request, error) {
	text, err := readSource(cmd, args)
	if err != nil {
		return question.Request{}, err
	}
	mc, _ := cmd.Flags().GetInt("mc")
	tf, _ := cmd.Flags().GetInt("tf")
	diffFlag, _ := cmd.Flags().GetString("difficulty")
	topic, _ := cmd.Flags().GetString("topic")
	docID, _ := cmd.Flags().GetString("document")
	userID, _ := cmd.Flags().GetString("user")

	diff, ok := question.ParseDifficulty(diffFlag)
	if !ok {
		return question.Request{}, fmt.Errorf("unknown difficulty %q (want beginner, intermediate, advanced or mixed)", diffFlag)
	}

	return question.Request{
		SourceText: text,
		DocumentID: docID,
		UserID:     userID,
		Counts: map[question.Type]int{
			question.TypeMultipleChoice: mc,
			question.TypeTrueFalse:      tf,
		},
		Difficulty: diff,
		TopicFocus: topic,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// resolveLLMConfig keeps an explicitly configured provider, and otherwise
// falls back to whichever standard API key variable is set.
func resolveLLMConfig(cfg *config.Config) error {
	err := cfg.LLM.Validate()
	if err == nil {
		return nil
	}
	if os.Getenv("QUIZGENIUS_LLM_PROVIDER") != "" {
		return err
	}
	found, ok := llm.DiscoverConfig()
	if !ok {
		return fmt.Errorf("%w (or set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY)", err)
	}
	cfg.LLM.Provider = found.Provider
	cfg.LLM.Anthropic.APIKey = firstNonEmpty(cfg.LLM.Anthropic.APIKey, found.Anthropic.APIKey)
	cfg.LLM.OpenAI.APIKey = firstNonEmpty(cfg.LLM.OpenAI.APIKey, found.OpenAI.APIKey)
	cfg.LLM.Gemini.APIKey = firstNonEmpty(cfg.LLM.Gemini.APIKey, found.Gemini.APIKey)
	cfg.LLM.OpenRouter.APIKey = firstNonEmpty(cfg.LLM.OpenRouter.APIKey, found.OpenRouter.APIKey)
	return cfg.LLM.Validate()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	f := generateCmd.Flags()
	f.Int("mc", 5, "Number of multiple choice questions")
	f.Int("tf", 5, "Number of true/false questions")
	f.StringP("difficulty", "d", "intermediate", "Difficulty: beginner, intermediate, advanced or mixed")
	f.StringP("topic", "t", "", "Topic to focus on")
	f.String("document", "", "Document id recorded with the run")
	f.String("user", "", "User id recorded with the run")
	f.Bool("save", false, "Store accepted questions in the database")
	f.Bool("require-suitable", false, "Abort when the text is judged unsuitable")
	f.Bool("show-rejected", false, "List rejected candidates with their reasons")
	f.Duration("timeout", 0, "Overall deadline; an expired run returns a partial result")
}
