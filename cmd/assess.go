package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/chunk"
	"github.com/abhisek/quizgenius/internal/suitability"
)

var assessCmd = &cobra.Command{
	Use:   "assess [file|-]",
	Short: "Score how well a document suits question generation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		text, err := readSource(cmd, args)
		if err != nil {
			return err
		}

		report, err := suitability.New(cfg.Pipeline.Suitability).Assess(text)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		renderReport(cmd.OutOrStdout(), report, cfg.Pipeline.Suitability.MinScore)
		return nil
	},
}

var chunkCmd = &cobra.Command{
	Use:   "chunk [file|-]",
	Short: "Show how a document would be split for generation",
	Args:  cobra.MaximumNArgs(1),
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

		text, err := readSource(cmd, args)
		if err != nil {
			return err
		}
		if n, _ := cmd.Flags().GetInt("max-chars"); n > 0 {
			cfg.Pipeline.Chunk.MaxChunkChars = n
		}

		chunks := chunk.NewPlanner(cfg.Pipeline.Chunk, log).Plan(text)
		if jsonOutput(cmd) {
			return writeJSON(cmd.OutOrStdout(), chunks)
		}
		renderChunks(cmd.OutOrStdout(), chunks)
		return nil
	},
}

func init() {
	chunkCmd.Flags().Int("max-chars", 0, "Override the maximum chunk size in characters")
}
